package log

import (
	"log"
	"os"

	"github.com/logrusorgru/aurora"
)

var (
	Output = os.Stderr
	Flags  = log.Ltime

	PrefixError = "Error: "
	PrefixInfo  = "Info:  "
	PrefixDebug = "Debug: "

	EnableDebug = false
)

var (
	logError *log.Logger
	logInfo  *log.Logger
	logDebug *log.Logger
)

func init() {
	ResetLoggers()
}

func newLogger(prefix aurora.Value) *log.Logger {
	return log.New(Output, prefix.Bold().String(), Flags)
}

func ResetLoggers() {
	logError = newLogger(aurora.Red(PrefixError))
	logInfo = newLogger(aurora.Blue(PrefixInfo))
	logDebug = newLogger(aurora.Gray(11, PrefixDebug))
}

func Infof(f string, v ...interface{}) {
	logInfo.Printf(f, v...)
}

func Infoln(v ...interface{}) {
	logInfo.Println(v...)
}

func Errorf(f string, v ...interface{}) {
	logError.Printf(f, v...)
}

func Errorln(v ...interface{}) {
	logError.Println(v...)
}

func Debugf(f string, v ...interface{}) {
	if !EnableDebug {
		return
	}
	logDebug.Printf(f, v...)
}

func Debugln(v ...interface{}) {
	if !EnableDebug {
		return
	}
	logDebug.Println(v...)
}
