//go:build windows || plan9

package workflow

func dialSyslog(string) (syslogWriter, error) {
	return nil, errSyslogUnsupported
}
