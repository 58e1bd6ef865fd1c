package engine

import "github.com/yokichess/yoki/internal/logging"

var log = logging.GetLog()
