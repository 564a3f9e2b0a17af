package acceptance

import (
	"io"
	"strings"
)

func floatPtr(v float64) *float64 { return &v }

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
