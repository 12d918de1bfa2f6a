package physics

import "errors"

// ErrWorldDestroyed 世界已销毁后继续推进仿真
var ErrWorldDestroyed = errors.New("physics: world destroyed")
