package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/tastythames/pecan-config/internal/cache"
)

// Hosts lists the configured hosts and their labels, including hosts that
// are never probed.
type Hosts func() map[string]map[string]string

// Stats reports the scheduler counters.
type Stats func() (enqueued, dropped uint64)

type Renderer struct {
	Cache cache.Cache
	Hosts Hosts
	Stats Stats

	now func() time.Time
}

func NewRenderer(c cache.Cache, hosts Hosts, stats Stats) *Renderer {
	return &Renderer{Cache: c, Hosts: hosts, Stats: stats, now: time.Now}
}

type sample struct {
	labels map[string]string
	value  float64
}

// Write renders the Prometheus text format, one group per metric.
func (r *Renderer) Write(w io.Writer) {
	start := time.Now()
	now := start
	if r.now != nil {
		now = r.now()
	}

	families := map[string][]sample{}
	add := func(name string, labels map[string]string, v float64) {
		families[name] = append(families[name], sample{labels: labels, value: v})
	}

	if r.Hosts != nil {
		for host, labels := range r.Hosts() {
			add(MetricHostInfo, withHost(host, labels), 1)
		}
	}

	snap := r.Cache.Snapshot()
	for host, res := range snap {
		labels := withHost(host, res.Labels)

		add(MetricCacheAgeSeconds, labels, now.Sub(res.At).Seconds())
		errFlag := 0.0
		if res.Err != nil {
			errFlag = 1
		}
		add(MetricHostError, labels, errFlag)

		for name, v := range res.Values {
			if name == MetricServiceUp || name == MetricHostError {
				continue
			}
			add(name, labels, v)
		}
	}

	writeFamily(w, MetricServiceUp, "1 if the host check service is running.", []sample{{value: 1}})
	if r.Stats != nil {
		enq, dropped := r.Stats()
		writeFamily(w, MetricProbesEnqueued, "Probes handed to workers.", []sample{{value: float64(enq)}})
		writeFamily(w, MetricProbesDropped, "Probes dropped because the queue was full.", []sample{{value: float64(dropped)}})
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeFamily(w, name, help[name], families[name])
	}

	writeFamily(w, MetricRenderDurationSeconds, "Time spent rendering /metrics.",
		[]sample{{value: time.Since(start).Seconds()}})
}

func writeFamily(w io.Writer, name, helpText string, samples []sample) {
	if helpText == "" {
		helpText = name
	}
	fmt.Fprintf(w, "# HELP %s %s\n", name, helpText)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, metricType(name))

	sort.Slice(samples, func(i, j int) bool {
		return formatLabels(samples[i].labels) < formatLabels(samples[j].labels)
	})
	for _, s := range samples {
		fmt.Fprintf(w, "%s%s %s\n", name, formatLabels(s.labels), formatValue(s.value))
	}
}

func metricType(name string) string {
	if strings.HasSuffix(name, "_total") {
		return "counter"
	}
	return "gauge"
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func withHost(host string, labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		out[k] = v
	}
	out["host"] = host
	return out
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func formatLabels(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `%s="%s"`, k, labelEscaper.Replace(m[k]))
	}
	b.WriteString("}")
	return b.String()
}
