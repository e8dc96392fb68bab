package logging

import (
	"go.uber.org/zap"
)

func WarmerField(name string) zap.Field {
	return zap.String("warmer", name)
}

func FunctionField(name string) zap.Field {
	return zap.String("function", name)
}

func PathField(path string) zap.Field {
	return zap.String("path", path)
}
