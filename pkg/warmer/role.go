package warmer

import (
	"fmt"
	"strings"

	"github.com/klothoplatform/warmup/pkg/config"
	"github.com/klothoplatform/warmup/pkg/provider/aws/resources"
	"github.com/klothoplatform/warmup/pkg/service"
)

var networkInterfaceActions = []string{
	"ec2:CreateNetworkInterface",
	"ec2:DescribeNetworkInterfaces",
	"ec2:DetachNetworkInterface",
	"ec2:DeleteNetworkInterface",
}

// AddRole adds the warmer's IAM role to the service resources and records its logical id in
// cfg.Role.
func AddRole(svc *service.Service, stage string, warmerName string, cfg *config.WarmerConfig) {
	cfg.Role = RoleLogicalId(warmerName)

	var roleName any = cfg.RoleName
	if cfg.RoleName == "" {
		roleName = resources.Join{
			Delimiter: "-",
			Values:    []any{svc.Name, stage, resources.RegionRef, strings.ToLower(warmerName), "role"},
		}
	}

	role := resources.NewIamRole(roleName, resources.LAMBDA_ASSUMER_ROLE_POLICY, resources.IamInlinePolicy{
		PolicyName: resources.Join{
			Delimiter: "-",
			Values:    []any{svc.Name, stage, "warmer", strings.ToLower(warmerName), "policy"},
		},
		PolicyDocument: warmerPolicy(cfg),
	})

	svc.EnsureResources()[cfg.Role] = role
}

func warmerPolicy(cfg *config.WarmerConfig) *resources.PolicyDocument {
	logGroup := fmt.Sprintf("log-group:/aws/lambda/%s", cfg.Name)

	invokeResources := make([]any, 0, len(cfg.Functions))
	for _, fn := range cfg.Functions {
		// the trailing wildcard covers versions and aliases
		invokeResources = append(invokeResources, resources.ArnSub("lambda", fmt.Sprintf("function:%s*", fn.Name)))
	}

	return &resources.PolicyDocument{
		Version: resources.VERSION,
		Statement: []resources.StatementEntry{
			resources.CreateAllowStatement(
				[]string{"logs:CreateLogGroup", "logs:CreateLogStream"},
				[]any{resources.ArnSub("logs", logGroup+":*")},
			),
			resources.CreateAllowStatement(
				[]string{"logs:PutLogEvents"},
				[]any{resources.ArnSub("logs", logGroup+":*:*")},
			),
			resources.CreateAllowStatement([]string{"lambda:InvokeFunction"}, invokeResources),
			// needed by targets attached to a VPC; granted unconditionally
			resources.CreateAllowStatement(networkInterfaceActions, "*"),
		},
	}
}
