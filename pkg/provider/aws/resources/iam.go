package resources

const (
	IAM_ROLE_TYPE = "AWS::IAM::Role"
	VERSION       = "2012-10-17"
)

var LAMBDA_ASSUMER_ROLE_POLICY = &PolicyDocument{
	Version: VERSION,
	Statement: []StatementEntry{
		{
			Effect: "Allow",
			Principal: &Principal{
				Service: []string{"lambda.amazonaws.com"},
			},
			Action: []string{"sts:AssumeRole"},
		},
	},
}

type (
	IamRole struct {
		Type       string
		Properties IamRoleProperties
	}

	IamRoleProperties struct {
		Path string
		// RoleName is either a literal string or an intrinsic such as [Join].
		RoleName                 any
		AssumeRolePolicyDocument *PolicyDocument
		Policies                 []IamInlinePolicy
	}

	IamInlinePolicy struct {
		PolicyName     any
		PolicyDocument *PolicyDocument
	}

	PolicyDocument struct {
		Version   string
		Statement []StatementEntry
	}

	StatementEntry struct {
		Effect    string
		Principal *Principal `json:",omitempty"`
		Action    []string
		// Resource is either "*" or a list of ARNs / intrinsics.
		Resource any `json:",omitempty"`
	}

	Principal struct {
		Service []string
	}
)

func NewIamRole(roleName any, assumeRolePolicy *PolicyDocument, policies ...IamInlinePolicy) *IamRole {
	return &IamRole{
		Type: IAM_ROLE_TYPE,
		Properties: IamRoleProperties{
			Path:                     "/",
			RoleName:                 roleName,
			AssumeRolePolicyDocument: assumeRolePolicy,
			Policies:                 policies,
		},
	}
}

func CreateAllowStatement(actions []string, resources any) StatementEntry {
	return StatementEntry{
		Effect:   "Allow",
		Action:   actions,
		Resource: resources,
	}
}

// ResourceList returns the statement's resources, or nil if the resource is the "*" wildcard.
func (s StatementEntry) ResourceList() []any {
	list, _ := s.Resource.([]any)
	return list
}
