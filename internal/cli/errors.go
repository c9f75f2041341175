package cli

import "errors"

// errNegativeNumber is returned when -n is below zero.
var errNegativeNumber = errors.New("number of migrations must not be negative")

// errHighSeverityFindings is returned when --fail-on-high is set and high/critical findings exist.
var errHighSeverityFindings = errors.New("high or critical severity findings detected")
