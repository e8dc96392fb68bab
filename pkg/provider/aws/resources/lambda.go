package resources

// LAMBDA_RUNTIME is the runtime of generated functions: the current nodejs LTS on Lambda.
const LAMBDA_RUNTIME = "nodejs20.x"

type (
	// LambdaFunction is a function entry in the serverless framework manifest.
	LambdaFunction struct {
		Description        string            `json:"description"`
		Events             []map[string]any  `json:"events"`
		Handler            string            `json:"handler"`
		MemorySize         int               `json:"memorySize"`
		Name               string            `json:"name"`
		Runtime            string            `json:"runtime"`
		Package            *Package          `json:"package"`
		Timeout            int               `json:"timeout"`
		Environment        map[string]string `json:"environment,omitempty"`
		Tracing            *bool             `json:"tracing,omitempty"`
		LogRetentionInDays *int              `json:"logRetentionInDays,omitempty"`
		RoleName           string            `json:"roleName,omitempty"`
		Role               string            `json:"role,omitempty"`
		Tags               map[string]string `json:"tags,omitempty"`
		VpcConfig          *LambdaVpcConfig  `json:"vpc,omitempty"`
		Architecture       string            `json:"architecture,omitempty"`
		Layers             []string          `json:"layers"`
	}

	Package struct {
		Individually bool     `json:"individually" mapstructure:"individually"`
		Patterns     []string `json:"patterns" mapstructure:"patterns"`
	}

	LambdaVpcConfig struct {
		SecurityGroupIds []any `json:"securityGroupIds" mapstructure:"securityGroupIds"`
		SubnetIds        []any `json:"subnetIds" mapstructure:"subnetIds"`
	}
)
