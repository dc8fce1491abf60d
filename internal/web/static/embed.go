package static

import (
	_ "embed"
)

//go:embed index.html
var dashboard []byte

// Dashboard returns the embedded single-page attendance dashboard.
func Dashboard() []byte {
	return dashboard
}
