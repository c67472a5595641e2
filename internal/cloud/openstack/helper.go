package openstack

import (
	"errors"
	"regexp"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/cloud"
	"github.com/gophercloud/gophercloud/v2"
)

// wrapError converts an API failure into the provider-neutral cloud.CommandError.
// For HTTP errors the response body plays the role of the CLI's error stream.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	cmdErr := &cloud.CommandError{
		Provider: "OpenStack",
		Args:     []string{op},
		ExitCode: -1,
		Err:      err,
	}

	var respErr gophercloud.ErrUnexpectedResponseCode
	if errors.As(err, &respErr) {
		cmdErr.ExitCode = respErr.Actual
		cmdErr.Stderr = string(respErr.Body)
	}

	return cmdErr
}

// filterNames returns the entries of names matched by pattern, preserving order.
func filterNames(names []string, pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var matched []string
	for _, name := range names {
		if re.MatchString(name) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}
