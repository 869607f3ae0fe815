package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sectionRenderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvstudio",
			Subsystem: "render",
			Name:      "sections_total",
			Help:      "分节渲染总数。",
		},
		[]string{"section", "outcome"},
	)

	languageSwitchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvstudio",
			Subsystem: "language",
			Name:      "switches_total",
			Help:      "语言切换总数。",
		},
		[]string{"lang"},
	)
)

// ObserveSectionRender counts one section render attempt.
func ObserveSectionRender(section string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	sectionRenderTotal.WithLabelValues(section, outcome).Inc()
}

// ObserveLanguageSwitch counts one completed language switch.
func ObserveLanguageSwitch(lang string) {
	languageSwitchTotal.WithLabelValues(lang).Inc()
}
