package insights

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.registerAuthTools()
	s.registerInventoryTools()
	s.registerVulnerabilityTools()
	s.registerComplianceTools()
	s.registerAdvisorTools()
	s.registerPolicyTools()
	s.registerRemediationTools()
	s.registerSubscriptionTools()
	s.registerExportTools()
	s.registerNotificationTools()
	s.registerContentTools()
}

func (s *Server) registerAuthTools() {
	s.mcpServer.AddTool(mcp.NewTool("test_authentication",
		mcp.WithDescription("Test authentication with Red Hat Insights using service account credentials"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sample, err := s.client.Get(ctx, "/inventory/v1/hosts", url.Values{"limit": {"1"}})
		if err != nil {
			return forward(func() (interface{}, error) {
				return map[string]interface{}{
					"status":  "error",
					"message": fmt.Sprintf("Authentication failed: %v", err),
				}, nil
			})
		}
		return forward(func() (interface{}, error) {
			return map[string]interface{}{
				"status":      "success",
				"message":     "Authentication successful",
				"sample_data": sample,
			}, nil
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_insights_overview",
		mcp.WithDescription("Get overview of systems and basic statistics by querying inventory"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/inventory/v1/hosts", url.Values{"limit": {"1"}})
		})
	})
}

func (s *Server) registerInventoryTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_systems",
		mcp.WithDescription("List all hosts/systems registered with Red Hat Insights. Use staleness='fresh' or 'stale' to filter"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of systems to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
		mcp.WithString("display_name",
			mcp.Description("Filter by display name"),
		),
		mcp.WithString("staleness",
			mcp.Description("Filter by staleness: fresh or stale"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := pageParams(request, 50)
		if name := request.GetString("display_name", ""); name != "" {
			params.Set("display_name", name)
		}
		if staleness := request.GetString("staleness", ""); staleness != "" {
			params.Set("staleness", staleness)
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/inventory/v1/hosts", params)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_system",
		mcp.WithDescription("Get details of a specific system by UUID"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("UUID of the system"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		systemID, err := request.RequireString("system_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/inventory/v1/hosts/"+systemID, nil)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_system_profile",
		mcp.WithDescription("Get system profile/facts for a specific system. Specify fields to limit response"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("UUID of the system"),
		),
		mcp.WithArray("fields",
			mcp.Description("System profile fields to include"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		systemID, err := request.RequireString("system_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		params := url.Values{}
		for _, field := range request.GetStringSlice("fields", nil) {
			params.Add("fields[system_profile]", field)
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/inventory/v1/hosts/"+systemID+"/system_profile", params)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_system_tags",
		mcp.WithDescription("Get tags for a specific system"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("UUID of the system"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		systemID, err := request.RequireString("system_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/inventory/v1/hosts/"+systemID+"/tags", nil)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("delete_system",
		mcp.WithDescription("Remove a system from Red Hat Insights inventory"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("UUID of the system to remove"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		systemID, err := request.RequireString("system_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Delete(ctx, "/inventory/v1/hosts/"+systemID)
		})
	})
}

func (s *Server) registerVulnerabilityTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_vulnerabilities",
		mcp.WithDescription("List vulnerabilities affecting your systems. Set affecting=true to only show CVEs affecting systems"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of CVEs to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
		mcp.WithBoolean("affecting",
			mcp.Description("Only show CVEs affecting systems (default true)"),
		),
		mcp.WithNumber("cvss_score_gte",
			mcp.Description("Minimum CVSS score"),
		),
		mcp.WithNumber("cvss_score_lte",
			mcp.Description("Maximum CVSS score"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := pageParams(request, 50)
		if request.GetBool("affecting", true) {
			params.Set("affecting", "true")
		}
		if score := request.GetFloat("cvss_score_gte", 0); score != 0 {
			params.Set("cvss_score_gte", strconv.FormatFloat(score, 'f', -1, 64))
		}
		if score := request.GetFloat("cvss_score_lte", 0); score != 0 {
			params.Set("cvss_score_lte", strconv.FormatFloat(score, 'f', -1, 64))
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/vulnerability/v1/vulnerabilities/cves", params)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_vulnerability_executive_report",
		mcp.WithDescription("Get executive vulnerability report with CVE summaries by severity"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/vulnerability/v1/report/executive", nil)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_advisories",
		mcp.WithDescription("List available advisories (patches)"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of advisories to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
		mcp.WithString("advisory_type",
			mcp.Description("Filter by advisory type"),
		),
		mcp.WithString("severity",
			mcp.Description("Filter by severity"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := pageParams(request, 50)
		if advisoryType := request.GetString("advisory_type", ""); advisoryType != "" {
			params.Set("advisory_type", advisoryType)
		}
		if severity := request.GetString("severity", ""); severity != "" {
			params.Set("severity", severity)
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/patch/v3/export/advisories", params)
		})
	})
}

func (s *Server) registerComplianceTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_compliance_policies",
		mcp.WithDescription("List SCAP compliance policies"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of policies to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/compliance/v2/policies", pageParams(request, 50))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_compliance_systems",
		mcp.WithDescription("List systems associated with SCAP policies"),
		mcp.WithBoolean("assigned_or_scanned",
			mcp.Description("Only show systems assigned to or scanned by a policy (default true)"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := url.Values{}
		if request.GetBool("assigned_or_scanned", true) {
			params.Set("filter", "assigned_or_scanned=true")
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/compliance/v2/systems", params)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("associate_compliance_policy",
		mcp.WithDescription("Associate a system with a SCAP compliance policy"),
		mcp.WithString("policy_id",
			mcp.Required(),
			mcp.Description("ID of the compliance policy"),
		),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("UUID of the system"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		policyID, err := request.RequireString("policy_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		systemID, err := request.RequireString("system_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Patch(ctx, "/compliance/v2/policies/"+policyID+"/systems/"+systemID)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_compliance_reports",
		mcp.WithDescription("List all compliance reports"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of reports to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/compliance/v2/reports", pageParams(request, 50))
		})
	})
}

func (s *Server) registerAdvisorTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_recommendations",
		mcp.WithDescription("List available recommendation rules from Advisor"),
		mcp.WithString("category",
			mcp.Description("Filter by rule category"),
		),
		mcp.WithString("impact",
			mcp.Description("Filter by impact level"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rules to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := pageParams(request, 50)
		if category := request.GetString("category", ""); category != "" {
			params.Set("category", category)
		}
		if impact := request.GetString("impact", ""); impact != "" {
			params.Set("impact", impact)
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/insights/v1/rule", params)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("export_rule_hits",
		mcp.WithDescription("Export all rule hits (recommendations) for systems. Set has_playbook=true for Ansible playbooks"),
		mcp.WithBoolean("has_playbook",
			mcp.Description("Only include rules with an Ansible playbook"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := url.Values{}
		if request.GetBool("has_playbook", false) {
			params.Set("has_playbook", "true")
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/insights/v1/export/hits", params)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_system_recommendations",
		mcp.WithDescription("Get recommendation summary for a specific system"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("UUID of the system"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		systemID, err := request.RequireString("system_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/insights/v1/system/"+systemID, nil)
		})
	})
}

func (s *Server) registerPolicyTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_policies",
		mcp.WithDescription("List all defined custom policies"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of policies to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/policies/v1/policies", pageParams(request, 50))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("create_policy",
		mcp.WithDescription("Create a new custom policy. Example conditions: arch = \"x86_64\""),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Policy name"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Policy description"),
		),
		mcp.WithString("conditions",
			mcp.Required(),
			mcp.Description("Policy condition expression"),
		),
		mcp.WithString("actions",
			mcp.Description("Action on trigger (default notification)"),
		),
		mcp.WithBoolean("is_enabled",
			mcp.Description("Whether the policy is active (default true)"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		description, err := request.RequireString("description")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		conditions, err := request.RequireString("conditions")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload := map[string]interface{}{
			"name":        name,
			"description": description,
			"conditions":  conditions,
			"actions":     request.GetString("actions", "notification"),
			"isEnabled":   request.GetBool("is_enabled", true),
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, "/policies/v1/policies", payload)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_policy_triggers",
		mcp.WithDescription("Get systems that triggered a specific policy"),
		mcp.WithString("policy_id",
			mcp.Required(),
			mcp.Description("ID of the policy"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		policyID, err := request.RequireString("policy_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/policies/v1/policies/"+policyID+"/history/trigger", nil)
		})
	})
}

func (s *Server) registerRemediationTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_remediations",
		mcp.WithDescription("List all defined remediation plans"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of plans to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/remediations/v1/remediations", pageParams(request, 50))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("create_remediation",
		mcp.WithDescription("Create a new remediation plan. Issues should be a list of objects with id, resolution, systems"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Remediation plan name"),
		),
		mcp.WithArray("issues",
			mcp.Required(),
			mcp.Description("Issues to remediate"),
		),
		mcp.WithBoolean("auto_reboot",
			mcp.Description("Reboot systems automatically when required"),
		),
		mcp.WithBoolean("archived",
			mcp.Description("Create the plan in archived state"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		issues, ok := request.GetArguments()["issues"].([]interface{})
		if !ok {
			return mcp.NewToolResultError("issues must be an array"), nil
		}

		payload := map[string]interface{}{
			"name":        name,
			"auto_reboot": request.GetBool("auto_reboot", false),
			"archived":    request.GetBool("archived", false),
			"add": map[string]interface{}{
				"issues": issues,
			},
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, "/remediations/v1/remediations", payload)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_remediation_playbook",
		mcp.WithDescription("Get Ansible playbook for a remediation plan"),
		mcp.WithString("remediation_id",
			mcp.Required(),
			mcp.Description("ID of the remediation plan"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		remediationID, err := request.RequireString("remediation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/remediations/v1/remediations/"+remediationID+"/playbook", nil)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("execute_remediation",
		mcp.WithDescription("Execute a remediation plan"),
		mcp.WithString("remediation_id",
			mcp.Required(),
			mcp.Description("ID of the remediation plan to run"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		remediationID, err := request.RequireString("remediation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, "/remediations/v1/remediations/"+remediationID+"/playbook_runs", nil)
		})
	})
}

func (s *Server) registerSubscriptionTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_rhel_subscriptions",
		mcp.WithDescription("List systems with RHEL subscriptions. Product examples: 'RHEL for x86', 'RHEL for x86_64'"),
		mcp.WithString("product",
			mcp.Description("Product name (default 'RHEL for x86')"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of instances to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		product := request.GetString("product", "RHEL for x86")
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/rhsm-subscriptions/v1/instances/products/"+url.PathEscape(product), pageParams(request, 50))
		})
	})
}

func (s *Server) registerExportTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_export",
		mcp.WithDescription("Create an export request. Common applications: 'urn:redhat:application:inventory', 'subscriptions'"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Export name"),
		),
		mcp.WithString("format",
			mcp.Required(),
			mcp.Description("Export format, e.g. json or csv"),
		),
		mcp.WithString("application",
			mcp.Required(),
			mcp.Description("Source application"),
		),
		mcp.WithString("resource",
			mcp.Required(),
			mcp.Description("Source resource"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format, err := request.RequireString("format")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		application, err := request.RequireString("application")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		resource, err := request.RequireString("resource")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload := map[string]interface{}{
			"name":   name,
			"format": format,
			"sources": []interface{}{
				map[string]interface{}{
					"application": application,
					"resource":    resource,
				},
			},
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, "/export/v1/exports", payload)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_export_status",
		mcp.WithDescription("Get status of an export request"),
		mcp.WithString("export_id",
			mcp.Required(),
			mcp.Description("ID of the export"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		exportID, err := request.RequireString("export_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/export/v1/exports/"+exportID+"/status", nil)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("download_export",
		mcp.WithDescription("Download completed export as ZIP file"),
		mcp.WithString("export_id",
			mcp.Required(),
			mcp.Description("ID of the export"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		exportID, err := request.RequireString("export_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/export/v1/exports/"+exportID, nil)
		})
	})
}

func (s *Server) registerNotificationTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_notification_events",
		mcp.WithDescription("Get notification event history. Dates in YYYY-MM-DD format"),
		mcp.WithString("start_date",
			mcp.Description("Earliest event date"),
		),
		mcp.WithString("end_date",
			mcp.Description("Latest event date"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of events to return (default 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := pageParams(request, 20)
		if start := request.GetString("start_date", ""); start != "" {
			params.Set("startDate", start)
		}
		if end := request.GetString("end_date", ""); end != "" {
			params.Set("endDate", end)
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/notifications/v1/notifications/events", params)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_integrations",
		mcp.WithDescription("List configured third-party integrations"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/integrations/v1/endpoints", nil)
		})
	})
}

func (s *Server) registerContentTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_repositories",
		mcp.WithDescription("List all existing content repositories"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of repositories to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/content-sources/v1.0/repositories", pageParams(request, 50))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("create_repository",
		mcp.WithDescription("Create a new custom repository"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Repository name"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Repository URL"),
		),
		mcp.WithString("distribution_arch",
			mcp.Description("Target architecture (default x86_64)"),
		),
		mcp.WithArray("distribution_versions",
			mcp.Description("RHEL versions the repository serves (default [\"9\"])"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		repoURL, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		versions := request.GetStringSlice("distribution_versions", nil)
		if len(versions) == 0 {
			versions = []string{"9"}
		}

		payload := map[string]interface{}{
			"name":                  name,
			"url":                   repoURL,
			"distribution_arch":     request.GetString("distribution_arch", "x86_64"),
			"distribution_versions": versions,
			"metadata_verification": false,
			"module_hotfixes":       false,
			"snapshot":              false,
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, "/content-sources/v1.0/repositories", payload)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_content_templates",
		mcp.WithDescription("List all content templates"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of templates to return (default 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/content-sources/v1.0/templates", pageParams(request, 50))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("create_content_template",
		mcp.WithDescription("Create a new content template"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Template name"),
		),
		mcp.WithString("arch",
			mcp.Required(),
			mcp.Description("Target architecture"),
		),
		mcp.WithString("version",
			mcp.Required(),
			mcp.Description("RHEL version"),
		),
		mcp.WithArray("repository_uuids",
			mcp.Required(),
			mcp.Description("Repositories included in the template"),
		),
		mcp.WithString("description",
			mcp.Description("Template description"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		arch, err := request.RequireString("arch")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		version, err := request.RequireString("version")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		uuids := request.GetStringSlice("repository_uuids", nil)
		if len(uuids) == 0 {
			return mcp.NewToolResultError("repository_uuids must be a non-empty array"), nil
		}

		payload := map[string]interface{}{
			"name":             name,
			"arch":             arch,
			"version":          version,
			"description":      request.GetString("description", ""),
			"repository_uuids": uuids,
			"use_latest":       true,
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, "/content-sources/v1.0/templates", payload)
		})
	})
}
