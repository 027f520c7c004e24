package gulfstream

import (
	"github.com/hhkbp2/go-logging"
)

// パッケージ共通のロガー
var logger = logging.GetLogger("gulfstream")

// ログレベルを名前で設定します (DEBUG, INFO, WARN, ERROR, CRITICAL)。
func SetLogLevel(name string) {
	switch name {
	case "DEBUG":
		logger.SetLevel(logging.LevelDebug)
	case "INFO":
		logger.SetLevel(logging.LevelInfo)
	case "WARN":
		logger.SetLevel(logging.LevelWarn)
	case "ERROR":
		logger.SetLevel(logging.LevelError)
	case "CRITICAL":
		logger.SetLevel(logging.LevelCritical)
	}
}
