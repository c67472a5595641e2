//go:build !windows && !plan9

package workflow

import "log/syslog"

func dialSyslog(tag string) (syslogWriter, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, tag)
	if err != nil {
		return nil, err
	}
	return w, nil
}
