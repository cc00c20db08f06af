package dashboard

import (
	"net/http"
	"os"
	"strings"
)

const (
	// DefaultEChartsAssetsPath is the local path used to serve ECharts assets from disk.
	DefaultEChartsAssetsPath = "/dashboard/assets/echarts/"
	// DefaultEChartsCDN is the go-echarts hosted assets location.
	DefaultEChartsCDN = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

// EChartsAssetsHandler serves echarts.min.js and themes from dir under prefix.
func EChartsAssetsHandler(prefix, dir string) http.Handler {
	if prefix == "" {
		prefix = DefaultEChartsAssetsPath
	}
	prefix = ensureTrailingSlash(prefix)
	return http.StripPrefix(prefix, http.FileServer(http.FS(os.DirFS(dir))))
}

// ResolveEChartsAssetsHost picks the host charts load their scripts from.
// A local assets dir wins over a configured host; the CDN is the fallback.
func ResolveEChartsAssetsHost(host, dir string) string {
	if strings.TrimSpace(dir) != "" {
		return DefaultEChartsAssetsPath
	}
	if host = strings.TrimSpace(host); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsCDN
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
