package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "after_hours_events_handled_total",
		Help: "Total number of add-in events handled, by event",
	}, []string{"event"})
	MessagesDelayed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "after_hours_messages_delayed_total",
		Help: "Total number of composed messages given a deferred delivery time, by reason",
	}, []string{"reason"})
	DelaysRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "after_hours_delays_removed_total",
		Help: "Total number of deferred deliveries cleared by the user",
	})
	HostErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "after_hours_host_errors_total",
		Help: "Total number of failed mailbox host API calls, by operation",
	}, []string{"operation"})
	SettingsErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "after_hours_settings_errors_total",
		Help: "Total number of failed roaming settings reads and writes",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(EventsHandled, MessagesDelayed, DelaysRemoved, HostErrors, SettingsErrors)
}

// Handler returns the HTTP handler serving the registered metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
