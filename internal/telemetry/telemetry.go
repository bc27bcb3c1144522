// Package telemetry exposes Prometheus collectors for the simulation:
// tick timing, pool occupancy, and gameplay counters. Cardinality is
// kept bounded (no per-actor or per-player labels) so the metrics
// surface can't be used to exhaust the collector.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Time spent executing one logic tick",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02},
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_render_duration_seconds",
		Help:    "Time spent producing one rendered frame",
		Buckets: []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.1},
	})

	actorCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_actor_count",
		Help: "Current number of live actors in the pool",
	})

	particleCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_particle_count",
		Help: "Current number of live particles across all groups",
	})

	effectCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_effect_count",
		Help: "Current number of live effects",
	})

	projectileCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_projectile_count",
		Help: "Current number of live player shots",
	})

	// poolExhausted is bounded: pool is one of a small fixed set of names.
	poolExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_pool_exhausted_total",
		Help: "Spawn attempts dropped because a fixed-capacity pool was full",
	}, []string{"pool"})

	damageDealtTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_damage_dealt_total",
		Help: "Total damage points dealt to actors",
	})

	playerDeathsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_player_deaths_total",
		Help: "Total player deaths",
	})

	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_event_log_total",
		Help: "Total events appended to the event log",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_event_log_dropped_total",
		Help: "Events dropped by the event log due to rate limiting or a full buffer",
	})
)

// RecordTick records tick timing.
func RecordTick(d time.Duration) { tickDuration.Observe(d.Seconds()) }

// RecordRender records render timing.
func RecordRender(d time.Duration) { renderDuration.Observe(d.Seconds()) }

// SetActorCount updates the live actor gauge.
func SetActorCount(n int) { actorCount.Set(float64(n)) }

// SetParticleCount updates the live particle gauge.
func SetParticleCount(n int) { particleCount.Set(float64(n)) }

// SetEffectCount updates the live effect gauge.
func SetEffectCount(n int) { effectCount.Set(float64(n)) }

// SetProjectileCount updates the live projectile gauge.
func SetProjectileCount(n int) { projectileCount.Set(float64(n)) }

// RecordPoolExhausted increments the drop counter for a named pool.
// pool must be one of: "actor", "projectile", "effect", "movingMapPart",
// "particle".
func RecordPoolExhausted(pool string) {
	poolExhausted.WithLabelValues(pool).Inc()
}

// RecordDamage adds to the cumulative damage-dealt counter.
func RecordDamage(amount int) {
	if amount <= 0 {
		return
	}
	damageDealtTotal.Add(float64(amount))
}

// RecordPlayerDeath increments the death counter.
func RecordPlayerDeath() { playerDeathsTotal.Inc() }

// RecordEventLogged increments the event-log throughput counter.
func RecordEventLogged() { eventLogTotal.Inc() }

// RecordEventDropped increments the event-log drop counter.
func RecordEventDropped() { eventLogDropped.Inc() }

// Handler returns the Prometheus scrape handler for mounting on a
// debug/metrics server.
func Handler() http.Handler {
	return promhttp.Handler()
}
