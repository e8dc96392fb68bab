package resources

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_IntrinsicMarshal(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{
			name:  "ref",
			value: RegionRef,
			want:  `{"Ref":"AWS::Region"}`,
		},
		{
			name:  "sub",
			value: ArnSub("lambda", "function:foo*"),
			want:  `{"Fn::Sub":"arn:${AWS::Partition}:lambda:${AWS::Region}:${AWS::AccountId}:function:foo*"}`,
		},
		{
			name:  "join",
			value: Join{Delimiter: "-", Values: []any{"svc", RegionRef, "role"}},
			want:  `{"Fn::Join":["-",["svc",{"Ref":"AWS::Region"},"role"]]}`,
		},
		{
			name:  "empty join",
			value: Join{Delimiter: "-"},
			want:  `{"Fn::Join":["-",[]]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func Test_NewIamRole(t *testing.T) {
	assert := assert.New(t)
	role := NewIamRole("my-role", LAMBDA_ASSUMER_ROLE_POLICY, IamInlinePolicy{
		PolicyName: "my-policy",
		PolicyDocument: &PolicyDocument{
			Version:   VERSION,
			Statement: []StatementEntry{CreateAllowStatement([]string{"ec2:DescribeNetworkInterfaces"}, "*")},
		},
	})

	got, err := json.Marshal(role)
	assert.NoError(err)
	assert.JSONEq(`{
		"Type": "AWS::IAM::Role",
		"Properties": {
			"Path": "/",
			"RoleName": "my-role",
			"AssumeRolePolicyDocument": {
				"Version": "2012-10-17",
				"Statement": [{
					"Effect": "Allow",
					"Principal": {"Service": ["lambda.amazonaws.com"]},
					"Action": ["sts:AssumeRole"]
				}]
			},
			"Policies": [{
				"PolicyName": "my-policy",
				"PolicyDocument": {
					"Version": "2012-10-17",
					"Statement": [{
						"Effect": "Allow",
						"Action": ["ec2:DescribeNetworkInterfaces"],
						"Resource": "*"
					}]
				}
			}]
		}
	}`, string(got))
}

func Test_StatementResourceList(t *testing.T) {
	assert := assert.New(t)
	assert.Nil(CreateAllowStatement(nil, "*").ResourceList())
	assert.Equal([]any{"a", "b"}, CreateAllowStatement(nil, []any{"a", "b"}).ResourceList())
}

func Test_LambdaFunctionOmitsUnset(t *testing.T) {
	assert := assert.New(t)
	fn := &LambdaFunction{
		Description: "desc",
		Handler:     ".warmup/default/index.warmUp",
		Runtime:     LAMBDA_RUNTIME,
		Layers:      []string{},
	}
	got, err := json.Marshal(fn)
	assert.NoError(err)

	var m map[string]any
	assert.NoError(json.Unmarshal(got, &m))
	for _, key := range []string{"environment", "tracing", "logRetentionInDays", "roleName", "role", "tags", "vpc", "architecture"} {
		assert.NotContains(m, key)
	}
	assert.Equal([]any{}, m["layers"])
}
