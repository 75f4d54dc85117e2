package aap

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"redmcp/internal/tokenauth"
)

// validInventorySources are the source types the controller accepts for
// dynamic inventory sources.
var validInventorySources = []string{
	"file", "constructed", "scm", "ec2", "gce", "azure_rm", "vmware",
	"satellite6", "openstack", "rhv", "controller", "insights",
	"terraform", "openshift_virtualization",
}

func (s *Server) registerTools() {
	s.registerReadTools()
	s.registerExecuteTools()
	s.registerManageTools()
	s.registerInfoTools()
}

func (s *Server) registerReadTools() {
	s.addTool(mcp.NewTool("list_inventories",
		mcp.WithDescription("List all inventories in Ansible Automation Platform"),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Get(ctx, "/inventories/")
		})
	})

	s.addTool(mcp.NewTool("get_inventory",
		mcp.WithDescription("Get details of a specific inventory by ID"),
		mcp.WithString("inventory_id",
			mcp.Required(),
			mcp.Description("ID of the inventory to fetch"),
		),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		inventoryID, err := request.RequireString("inventory_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Get(ctx, fmt.Sprintf("/inventories/%s/", inventoryID))
		})
	})

	s.addTool(mcp.NewTool("job_status",
		mcp.WithDescription("Check the status of a job by ID"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("ID of the job to check"),
		),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireInt("job_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Get(ctx, fmt.Sprintf("/jobs/%d/", jobID))
		})
	})

	s.addTool(mcp.NewTool("job_logs",
		mcp.WithDescription("Retrieve logs for a job"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("ID of the job whose logs to fetch"),
		),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireInt("job_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			logs, err := s.client.Get(ctx, fmt.Sprintf("/jobs/%d/stdout/", jobID))
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"job_id": jobID,
				"logs":   logs,
			}, nil
		})
	})

	s.addTool(mcp.NewTool("list_inventory_sources",
		mcp.WithDescription("List all inventory sources"),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Get(ctx, "/inventory_sources/")
		})
	})

	s.addTool(mcp.NewTool("get_inventory_source",
		mcp.WithDescription("Get details of a specific inventory source"),
		mcp.WithNumber("inventory_source_id",
			mcp.Required(),
			mcp.Description("ID of the inventory source"),
		),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		sourceID, err := request.RequireInt("inventory_source_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Get(ctx, fmt.Sprintf("/inventory_sources/%d/", sourceID))
		})
	})

	s.addTool(mcp.NewTool("list_job_templates",
		mcp.WithDescription("List all job templates"),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Get(ctx, "/job_templates/")
		})
	})

	s.addTool(mcp.NewTool("get_job_template",
		mcp.WithDescription("Retrieve details of a specific job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("ID of the job template"),
		),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		templateID, err := request.RequireInt("template_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Get(ctx, fmt.Sprintf("/job_templates/%d/", templateID))
		})
	})

	s.addTool(mcp.NewTool("list_jobs",
		mcp.WithDescription("List all jobs"),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Get(ctx, "/jobs/")
		})
	})

	s.addTool(mcp.NewTool("list_recent_jobs",
		mcp.WithDescription("List jobs executed in the last specified hours (default 24)"),
		mcp.WithNumber("hours",
			mcp.Description("How far back to look, in hours"),
		),
	), tokenauth.ScopeRead, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		hours := request.GetInt("hours", 24)
		since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour).Format(time.RFC3339)
		return s.callAPI(cred, func() (interface{}, error) {
			result, err := s.client.Get(ctx, "/jobs/?created__gte="+url.QueryEscape(since))
			if err != nil {
				return nil, err
			}
			if m, ok := result.(map[string]interface{}); ok {
				m["time_filter"] = since
			}
			return result, nil
		})
	})
}

func (s *Server) registerExecuteTools() {
	s.addTool(mcp.NewTool("run_job",
		mcp.WithDescription("Run a job template by ID, optionally with extra_vars"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("ID of the job template to launch"),
		),
		mcp.WithObject("extra_vars",
			mcp.Description("Extra variables passed to the job"),
		),
	), tokenauth.ScopeExecute, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		templateID, err := request.RequireInt("template_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		extraVars := objectArg(request, "extra_vars")
		if extraVars == nil {
			extraVars = map[string]interface{}{}
		}
		return s.callAPI(cred, func() (interface{}, error) {
			result, err := s.client.Post(ctx, fmt.Sprintf("/job_templates/%d/launch/", templateID), map[string]interface{}{
				"extra_vars": extraVars,
			})
			if err != nil {
				return nil, err
			}
			if m, ok := result.(map[string]interface{}); ok {
				m["template_id"] = templateID
			}
			return result, nil
		})
	})

	s.addTool(mcp.NewTool("sync_inventory_source",
		mcp.WithDescription("Manually trigger a sync for an inventory source"),
		mcp.WithNumber("inventory_source_id",
			mcp.Required(),
			mcp.Description("ID of the inventory source to sync"),
		),
	), tokenauth.ScopeExecute, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		sourceID, err := request.RequireInt("inventory_source_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Post(ctx, fmt.Sprintf("/inventory_sources/%d/update/", sourceID), nil)
		})
	})
}

func (s *Server) registerManageTools() {
	s.addTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a new project in Ansible Automation Platform"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithNumber("organization_id",
			mcp.Required(),
			mcp.Description("ID of the owning organization"),
		),
		mcp.WithString("source_control_url",
			mcp.Required(),
			mcp.Description("Source control repository URL"),
		),
		mcp.WithString("source_control_type",
			mcp.Description("Source control type (default git)"),
		),
		mcp.WithString("description",
			mcp.Description("Project description"),
		),
		mcp.WithString("source_control_branch",
			mcp.Description("Branch, tag, or commit to check out"),
		),
		mcp.WithString("source_control_refspec",
			mcp.Description("Additional refspec to fetch"),
		),
		mcp.WithNumber("source_control_credential_id",
			mcp.Description("Credential used to access the repository"),
		),
		mcp.WithNumber("execution_environment_id",
			mcp.Description("Execution environment for project syncs"),
		),
		mcp.WithBoolean("clean",
			mcp.Description("Discard local modifications before update"),
		),
		mcp.WithBoolean("update_revision_on_launch",
			mcp.Description("Sync the project revision before each job launch"),
		),
		mcp.WithBoolean("delete",
			mcp.Description("Delete the local repository before update"),
		),
		mcp.WithBoolean("allow_branch_override",
			mcp.Description("Allow job templates to override the branch"),
		),
		mcp.WithBoolean("track_submodules",
			mcp.Description("Track submodules at their latest commit"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		orgID, err := request.RequireInt("organization_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		scmURL, err := request.RequireString("source_control_url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload := map[string]interface{}{
			"name":                 name,
			"description":          request.GetString("description", ""),
			"organization":         orgID,
			"scm_type":             strings.ToLower(request.GetString("source_control_type", "git")),
			"scm_url":              scmURL,
			"scm_branch":           request.GetString("source_control_branch", ""),
			"scm_refspec":          request.GetString("source_control_refspec", ""),
			"scm_clean":            request.GetBool("clean", false),
			"scm_delete_on_update": request.GetBool("delete", false),
			"scm_update_on_launch": request.GetBool("update_revision_on_launch", false),
			"allow_override":       request.GetBool("allow_branch_override", false),
			"scm_track_submodules": request.GetBool("track_submodules", false),
		}
		if id := request.GetInt("execution_environment_id", 0); id != 0 {
			payload["execution_environment"] = id
		}
		if id := request.GetInt("source_control_credential_id", 0); id != 0 {
			payload["credential"] = id
		}

		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Post(ctx, "/projects/", payload)
		})
	})

	s.addTool(mcp.NewTool("create_job_template",
		mcp.WithDescription("Create a new job template"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Job template name"),
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("ID of the project containing the playbook"),
		),
		mcp.WithString("playbook",
			mcp.Required(),
			mcp.Description("Playbook path within the project"),
		),
		mcp.WithNumber("inventory_id",
			mcp.Required(),
			mcp.Description("ID of the inventory to run against"),
		),
		mcp.WithString("job_type",
			mcp.Description("Job type: run or check (default run)"),
		),
		mcp.WithString("description",
			mcp.Description("Job template description"),
		),
		mcp.WithNumber("credential_id",
			mcp.Description("Credential used when running the template"),
		),
		mcp.WithNumber("execution_environment_id",
			mcp.Description("Execution environment for job runs"),
		),
		mcp.WithNumber("forks",
			mcp.Description("Number of parallel processes"),
		),
		mcp.WithString("limit",
			mcp.Description("Host pattern limiting the run"),
		),
		mcp.WithNumber("verbosity",
			mcp.Description("Output verbosity, 0 through 5"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Per-job timeout in seconds"),
		),
		mcp.WithObject("extra_vars",
			mcp.Description("Default extra variables"),
		),
		mcp.WithBoolean("privilege_escalation",
			mcp.Description("Enable privilege escalation"),
		),
		mcp.WithBoolean("concurrent_jobs",
			mcp.Description("Allow simultaneous runs"),
		),
		mcp.WithBoolean("enable_webhook",
			mcp.Description("Enable the GitHub webhook service"),
		),
		mcp.WithBoolean("prevent_instance_group_fallback",
			mcp.Description("Restrict execution to the template's instance groups"),
		),
		mcp.WithObject("survey_spec",
			mcp.Description("Survey specification attached to the template"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		projectID, err := request.RequireInt("project_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		playbook, err := request.RequireString("playbook")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		inventoryID, err := request.RequireInt("inventory_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		credentialID := request.GetInt("credential_id", 0)
		executionEnvID := request.GetInt("execution_environment_id", 0)
		extraVars := objectArg(request, "extra_vars")
		webhook := ""
		if request.GetBool("enable_webhook", false) {
			webhook = "github"
		}

		payload := map[string]interface{}{
			"name":                                name,
			"description":                         request.GetString("description", ""),
			"job_type":                            request.GetString("job_type", "run"),
			"project":                             projectID,
			"playbook":                            playbook,
			"inventory":                           inventoryID,
			"forks":                               request.GetInt("forks", 0),
			"limit":                               request.GetString("limit", ""),
			"verbosity":                           request.GetInt("verbosity", 0),
			"timeout":                             request.GetInt("timeout", 0),
			"ask_variables_on_launch":             extraVars != nil,
			"ask_credential_on_launch":            credentialID == 0,
			"ask_execution_environment_on_launch": executionEnvID == 0,
			"ask_inventory_on_launch":             false,
			"ask_job_type_on_launch":              false,
			"become_enabled":                      request.GetBool("privilege_escalation", false),
			"allow_simultaneous":                  request.GetBool("concurrent_jobs", false),
			"scm_branch":                          "",
			"webhook_service":                     webhook,
			"prevent_instance_group_fallback":     request.GetBool("prevent_instance_group_fallback", false),
		}
		if credentialID != 0 {
			payload["credential"] = credentialID
		}
		if executionEnvID != 0 {
			payload["execution_environment"] = executionEnvID
		}
		if extraVars != nil {
			payload["extra_vars"] = extraVars
		}
		if spec := objectArg(request, "survey_spec"); spec != nil {
			payload["survey_spec"] = spec
		}

		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Post(ctx, "/job_templates/", payload)
		})
	})

	s.addTool(mcp.NewTool("create_inventory_source",
		mcp.WithDescription("Create a dynamic inventory source"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Inventory source name"),
		),
		mcp.WithNumber("inventory_id",
			mcp.Required(),
			mcp.Description("ID of the inventory the source feeds"),
		),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Source type, e.g. scm, ec2, openstack"),
		),
		mcp.WithNumber("credential_id",
			mcp.Required(),
			mcp.Description("Credential used to reach the source"),
		),
		mcp.WithObject("source_vars",
			mcp.Description("Source-specific variables"),
		),
		mcp.WithBoolean("update_on_launch",
			mcp.Description("Sync the source before each job launch (default true)"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Sync timeout in seconds"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		inventoryID, err := request.RequireInt("inventory_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		source, err := request.RequireString("source")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		credentialID, err := request.RequireInt("credential_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if !validSource(source) {
			return jsonResult(map[string]interface{}{
				"success":            false,
				"error":              fmt.Sprintf("Invalid source type '%s'. Please select from: %s", source, strings.Join(validInventorySources, ", ")),
				"authenticated_user": cred.Email,
			})
		}
		if credentialID == 0 {
			return jsonResult(map[string]interface{}{
				"success":            false,
				"error":              "Credential is required to create an inventory source.",
				"authenticated_user": cred.Email,
			})
		}

		payload := map[string]interface{}{
			"name":             name,
			"inventory":        inventoryID,
			"source":           source,
			"credential":       credentialID,
			"source_vars":      objectArg(request, "source_vars"),
			"update_on_launch": request.GetBool("update_on_launch", true),
			"timeout":          request.GetInt("timeout", 0),
		}

		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Post(ctx, "/inventory_sources/", payload)
		})
	})

	s.addTool(mcp.NewTool("update_inventory_source",
		mcp.WithDescription("Update an existing inventory source"),
		mcp.WithNumber("inventory_source_id",
			mcp.Required(),
			mcp.Description("ID of the inventory source to update"),
		),
		mcp.WithObject("update_data",
			mcp.Required(),
			mcp.Description("Fields to change"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		sourceID, err := request.RequireInt("inventory_source_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Patch(ctx, fmt.Sprintf("/inventory_sources/%d/", sourceID), objectArg(request, "update_data"))
		})
	})

	s.addTool(mcp.NewTool("delete_inventory_source",
		mcp.WithDescription("Delete an inventory source"),
		mcp.WithNumber("inventory_source_id",
			mcp.Required(),
			mcp.Description("ID of the inventory source to delete"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		sourceID, err := request.RequireInt("inventory_source_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			if _, err := s.client.Delete(ctx, fmt.Sprintf("/inventory_sources/%d/", sourceID)); err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"success": true,
				"message": fmt.Sprintf("Inventory source %d deleted successfully", sourceID),
			}, nil
		})
	})

	s.addTool(mcp.NewTool("create_inventory",
		mcp.WithDescription("Create an inventory"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Inventory name"),
		),
		mcp.WithNumber("organization_id",
			mcp.Required(),
			mcp.Description("ID of the owning organization"),
		),
		mcp.WithString("description",
			mcp.Description("Inventory description"),
		),
		mcp.WithString("kind",
			mcp.Description("Inventory kind: empty for standard, smart, or constructed"),
		),
		mcp.WithString("host_filter",
			mcp.Description("Host filter for smart inventories"),
		),
		mcp.WithObject("variables",
			mcp.Description("Inventory variables"),
		),
		mcp.WithBoolean("prevent_instance_group_fallback",
			mcp.Description("Restrict execution to the inventory's instance groups"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		orgID, err := request.RequireInt("organization_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload := map[string]interface{}{
			"name":                            name,
			"organization":                    orgID,
			"description":                     request.GetString("description", ""),
			"kind":                            request.GetString("kind", ""),
			"host_filter":                     request.GetString("host_filter", ""),
			"variables":                       objectArg(request, "variables"),
			"prevent_instance_group_fallback": request.GetBool("prevent_instance_group_fallback", false),
		}

		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Post(ctx, "/inventories/", payload)
		})
	})

	s.addTool(mcp.NewTool("delete_inventory",
		mcp.WithDescription("Delete an inventory"),
		mcp.WithNumber("inventory_id",
			mcp.Required(),
			mcp.Description("ID of the inventory to delete"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		inventoryID, err := request.RequireInt("inventory_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			if _, err := s.client.Delete(ctx, fmt.Sprintf("/inventories/%d/", inventoryID)); err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"success": true,
				"message": fmt.Sprintf("Inventory %d deleted successfully", inventoryID),
			}, nil
		})
	})

	s.addTool(mcp.NewTool("associate_credential_with_template",
		mcp.WithDescription("Associate a credential with an existing job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("ID of the job template"),
		),
		mcp.WithNumber("credential_id",
			mcp.Required(),
			mcp.Description("ID of the credential to attach"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		templateID, err := request.RequireInt("template_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		credentialID, err := request.RequireInt("credential_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Post(ctx, fmt.Sprintf("/job_templates/%d/credentials/", templateID), map[string]interface{}{
				"id": credentialID,
			})
		})
	})

	s.addTool(mcp.NewTool("update_job_template",
		mcp.WithDescription("Update an existing job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("ID of the job template to update"),
		),
		mcp.WithObject("update_data",
			mcp.Required(),
			mcp.Description("Fields to change"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		templateID, err := request.RequireInt("template_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			return s.client.Patch(ctx, fmt.Sprintf("/job_templates/%d/", templateID), objectArg(request, "update_data"))
		})
	})

	s.addTool(mcp.NewTool("delete_job_template",
		mcp.WithDescription("Delete a job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("ID of the job template to delete"),
		),
	), tokenauth.ScopeManage, func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		templateID, err := request.RequireInt("template_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.callAPI(cred, func() (interface{}, error) {
			if _, err := s.client.Delete(ctx, fmt.Sprintf("/job_templates/%d/", templateID)); err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"success": true,
				"message": fmt.Sprintf("Job template %d deleted successfully", templateID),
			}, nil
		})
	})
}

func (s *Server) registerInfoTools() {
	s.addTool(mcp.NewTool("get_server_info",
		mcp.WithDescription("Get server information and authentication status"),
	), "", func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]interface{}{
			"server_name":        s.name,
			"server_version":     s.version,
			"server_uri":         s.cfg.Auth.ServerURI,
			"auth_server_uri":    s.cfg.Auth.AuthServerURI,
			"aap_url":            s.cfg.URL,
			"timestamp":          time.Now().Format(time.RFC3339),
			"authenticated_user": cred.Email,
			"user_scopes":        cred.Scopes,
			"message":            "Authentication successful - you have access to this AAP MCP server",
		})
	})

	s.addTool(mcp.NewTool("get_oauth_metadata",
		mcp.WithDescription("Get OAuth 2.0 Protected Resource Metadata (RFC 9728)"),
	), "", func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]interface{}{
			"resource":               s.cfg.Auth.ServerURI,
			"authorization_servers":  []string{s.cfg.Auth.AuthServerURI},
			"scopes_supported":       tokenauth.AvailableScopes(),
			"bearer_methods_supported": []string{"header"},
			"resource_documentation": s.cfg.Auth.ServerURI + "/docs",
			"authenticated_user":     cred.Email,
		})
	})

	s.addTool(mcp.NewTool("health_check",
		mcp.WithDescription("Perform a health check of the server"),
	), "", func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		connection := "not configured"
		if s.cfg.URL != "" && s.cfg.Token != "" {
			connection = "configured"
		}
		return jsonResult(map[string]interface{}{
			"status":         "healthy",
			"timestamp":      time.Now().Format(time.RFC3339),
			"server_name":    s.name,
			"server_version": s.version,
			"aap_connection": connection,
			"checked_by":     cred.Email,
		})
	})

	s.addTool(mcp.NewTool("list_tool_scopes",
		mcp.WithDescription("List all available tools and their required scopes"),
	), "", func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error) {
		mapping := make(map[string]interface{}, len(s.scopes))
		for _, ts := range s.scopes {
			required := ts.RequiredScope
			if required == "" {
				required = "none"
			}
			mapping[ts.Name] = map[string]interface{}{
				"required_scope":    required,
				"description":       ts.Description,
				"scope_description": ts.ScopeDescription(),
			}
		}
		return jsonResult(map[string]interface{}{
			"server_name":        s.name,
			"server_version":     s.version,
			"available_scopes":   tokenauth.AvailableScopes(),
			"tool_scope_mapping": mapping,
			"user_scopes":        cred.Scopes,
			"total_tools":        len(s.scopes),
			"timestamp":          time.Now().Format(time.RFC3339),
			"checked_by":         cred.Email,
		})
	})
}

func validSource(source string) bool {
	for _, s := range validInventorySources {
		if s == source {
			return true
		}
	}
	return false
}
