package config

import (
	"fmt"
	"os"
)

func Template() string {
	return template
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const template = `[input]
# auto | hex | raw | pcap
format = "auto"
# true: whole BOOTP datagrams, false: bare options region
frame = false

[output]
# text | json
format = "text"
validate = false
report = false

[listen]
addr = "0.0.0.0:67"
metrics_addr = "127.0.0.1:9167"
cors_origins = ["http://localhost:3000"]
max_frame_bytes = 65507
write_pcap = ""
# bearer token required on POST /decode; empty disables the check
admin_token = ""

[log]
level = "info"
`
