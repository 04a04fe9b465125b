package metrics

const (
	// service health
	MetricServiceUp             = "pecan_hostcheck_up"
	MetricRenderDurationSeconds = "pecan_hostcheck_render_duration_seconds"
	MetricProbesEnqueued        = "pecan_hostcheck_probes_enqueued_total"
	MetricProbesDropped         = "pecan_hostcheck_probes_dropped_total"

	// per host
	MetricHostInfo        = "pecan_host_info"
	MetricHostUp          = "pecan_host_up"
	MetricHostError       = "pecan_host_error"
	MetricCacheAgeSeconds = "pecan_host_probe_cache_age_seconds"
	MetricProbeDuration   = "pecan_host_probe_duration_seconds"
	MetricLastProbeTs     = "pecan_host_last_probe_timestamp_seconds"

	// ssh probe
	MetricUptimeSeconds    = "pecan_host_uptime_seconds"
	MetricLoad1            = "pecan_host_load1"
	MetricMemTotalBytes    = "pecan_host_memory_total_bytes"
	MetricMemAvailBytes    = "pecan_host_memory_available_bytes"
	MetricSchedulerReady   = "pecan_host_scheduler_ready"
	MetricSchedulerMissing = "pecan_host_scheduler_binaries_missing"

	// broker probe
	MetricQueueMessages  = "pecan_rabbitmq_queue_messages"
	MetricQueueConsumers = "pecan_rabbitmq_queue_consumers"
)

var help = map[string]string{
	MetricHostInfo:         "Configured execution host, always 1.",
	MetricHostUp:           "1 if the last probe succeeded.",
	MetricHostError:        "1 if the last probe returned an error.",
	MetricCacheAgeSeconds:  "Age of the cached probe result.",
	MetricProbeDuration:    "Duration of the last probe.",
	MetricLastProbeTs:      "Unix timestamp of the last probe.",
	MetricUptimeSeconds:    "Uptime of the host.",
	MetricLoad1:            "One minute load average.",
	MetricMemTotalBytes:    "MemTotal of the host.",
	MetricMemAvailBytes:    "MemAvailable of the host.",
	MetricSchedulerReady:   "1 if every qsub/qstat command was found on the host.",
	MetricSchedulerMissing: "Number of qsub/qstat commands not found on the host.",
	MetricQueueMessages:    "Messages ready in the host's RabbitMQ queue.",
	MetricQueueConsumers:   "Consumers attached to the host's RabbitMQ queue.",
}
