package catalog

// builtin is the stock entity roster for the monitoring schema.
var builtin = []EntityConfig{
	{
		ID:                 "devices",
		Label:              "Devices",
		DefaultSortField:   "last_seen",
		DefaultSortDir:     "desc",
		DefaultFilterField: "hostname",
		FilterFields: []string{
			"hostname", "ip", "device_id", "poller_id", "status", "os", "site",
		},
		Route: "/devices",
	},
	{
		ID:                 "pollers",
		Label:              "Pollers",
		DefaultSortField:   "last_seen",
		DefaultSortDir:     "desc",
		DefaultFilterField: "poller_id",
		FilterFields: []string{
			"poller_id", "status", "site", "version",
		},
		Route: "/pollers",
	},
	{
		ID:                 "events",
		Label:              "Events",
		DefaultTime:        "last_24h",
		DefaultSortField:   "timestamp",
		DefaultSortDir:     "desc",
		DefaultFilterField: "severity",
		FilterFields: []string{
			"severity", "event_type", "host", "source", "device_id",
		},
		Route: "/events",
	},
	{
		ID:                 "logs",
		Label:              "Logs",
		DefaultTime:        "last_1h",
		DefaultSortField:   "timestamp",
		DefaultSortDir:     "desc",
		DefaultFilterField: "severity",
		FilterFields: []string{
			"severity", "service", "trace_id", "host", "body",
		},
		Route: "/logs",
	},
	{
		ID:                 "alerts",
		Label:              "Alerts",
		DefaultTime:        "last_7d",
		DefaultSortField:   "timestamp",
		DefaultSortDir:     "desc",
		DefaultFilterField: "severity",
		FilterFields: []string{
			"severity", "state", "rule", "device_id",
		},
		Route: "/alerts",
	},
	{
		ID:                 "metrics",
		Label:              "Metrics",
		DefaultTime:        "last_24h",
		DefaultSortField:   "timestamp",
		DefaultSortDir:     "asc",
		DefaultFilterField: "metric_name",
		FilterFields: []string{
			"metric_name", "device_id", "poller_id", "unit",
		},
		Downsample:         true,
		DefaultBucket:      "5m",
		DefaultAgg:         "avg",
		DefaultSeriesField: "metric_name",
		SeriesFields: []string{
			"metric_name", "device_id", "poller_id",
		},
		Route: "/metrics",
	},
}
