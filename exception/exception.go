package exception

import (
	"fmt"
	"runtime"

	log "github.com/Lafeng/dhdemo/glog"
)

// injectable
var DEBUG bool

type Exception struct {
	msg  string
	root *Exception
}

func (e *Exception) Error() string {
	return e.msg
}

// Apply returns a copy of e carrying appendage in its message.
// The copy still matches e with errors.Is.
func (e *Exception) Apply(appendage interface{}) *Exception {
	newE := new(Exception)
	newE.msg = fmt.Sprintf("%s %v", e.msg, appendage)
	newE.root = e.origin()
	return newE
}

func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	return ok && t.origin() == e.origin()
}

func (e *Exception) origin() *Exception {
	if e.root != nil {
		return e.root
	}
	return e
}

func New(msg string) *Exception {
	return &Exception{msg: msg}
}

func Detail(err error) string {
	if err != nil && (log.V(log.LV_ERR_DETAIL) || DEBUG) {
		return fmt.Sprintf("(Error:%T::%s)", err, err)
	}
	return ""
}

// if ( [re] != nil OR [err] !=nil ) then return true
// and set [err] to [re] if [re] != nil
func Catch(re interface{}, err *error) bool {
	var ex error
	if re != nil {
		switch rex := re.(type) {
		case error:
			ex = rex
		default:
			ex = fmt.Errorf("%v", re)
		}
		// print recovered error
		if DEBUG || log.V(log.LV_ERR_STACK) {
			buf := make([]byte, 1600)
			n := runtime.Stack(buf, false)
			errStack := ex.Error() + "\n"
			errStack += string(buf[:n])
			log.DirectPrintln(errStack)
		}
	}
	if ex != nil {
		if err != nil {
			*err = ex
		}
		return true
	}
	return err != nil && *err != nil
}

// Spawn replaces a non-nil *ePtr with a new message, keeping the cause
// text only when verbose.
func Spawn(ePtr *error, format string, args ...interface{}) error {
	var err error
	if err = *ePtr; err == nil {
		return nil
	}
	var e Exception
	e.msg = fmt.Sprintf(format, args...)
	if log.V(log.LV_ERR_DETAIL) {
		e.msg += " " + err.Error()
	}
	*ePtr = &e
	return &e
}
