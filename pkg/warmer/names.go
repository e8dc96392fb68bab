package warmer

import "github.com/iancoleman/strcase"

// RoleLogicalId is the CloudFormation logical id of the role synthesized for a warmer.
func RoleLogicalId(warmerName string) string {
	return "WarmUpPlugin" + strcase.ToCamel(warmerName) + "Role"
}

// FunctionKey is the key of the warmer function in the service's functions.
func FunctionKey(warmerName string) string {
	return "warmUpPlugin" + strcase.ToCamel(warmerName)
}
