package vm

import (
	"time"

	"lox/internal/object"
)

// clockNative returns wall-clock seconds since the Unix epoch.
func clockNative(args []object.Value) object.Value {
	return object.NumberValue(float64(time.Now().UnixNano()) / float64(time.Second))
}
