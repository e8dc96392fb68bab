package resources

import (
	"encoding/json"
	"fmt"
)

// CloudFormation intrinsic functions, resolved at deploy time.
type (
	// Ref is `{"Ref": "<name>"}`.
	Ref string

	// Sub is `{"Fn::Sub": "<template>"}`.
	Sub string

	// Join is `{"Fn::Join": ["<delimiter>", [values...]]}`.
	Join struct {
		Delimiter string
		Values    []any
	}
)

const (
	RegionRef    = Ref("AWS::Region")
	PartitionRef = Ref("AWS::Partition")
	AccountIdRef = Ref("AWS::AccountId")
)

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": string(r)})
}

func (s Sub) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Fn::Sub": string(s)})
}

func (j Join) MarshalJSON() ([]byte, error) {
	values := j.Values
	if values == nil {
		values = []any{}
	}
	return json.Marshal(map[string][]any{"Fn::Join": {j.Delimiter, values}})
}

// ArnSub builds an ARN for the partition, region and account of the deployment.
func ArnSub(service, resource string) Sub {
	return Sub(fmt.Sprintf("arn:${%s}:%s:${%s}:${%s}:%s", PartitionRef, service, RegionRef, AccountIdRef, resource))
}
