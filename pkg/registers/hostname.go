package registers

import (
	"os"

	"github.com/shirou/gopsutil/v3/host"
)

// ResolveHostname 样本主机名：配置优先，其次 gopsutil 探测，最后 os.Hostname
func ResolveHostname(override string) string {
	if override != "" {
		return override
	}
	if info, err := host.Info(); err == nil && info.Hostname != "" {
		return info.Hostname
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "localhost"
}
