// metrics объявляет prometheus-счётчики auth-flow.
// Все методы безопасны для nil-получателя: метрики опциональны.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "authflow"

// Результаты операций для label result.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultExpired  = "expired"
	ResultRevoked  = "revoked"
	ResultFailed   = "failed"
	ResultRejected = "rejected"
	ResultCanceled = "canceled"
)

// Metrics — набор счётчиков сервиса токенов и контроллера формы.
type Metrics struct {
	TokensIssued *prometheus.CounterVec
	Refreshes    *prometheus.CounterVec
	Submissions  *prometheus.CounterVec
}

// New создаёт и регистрирует счётчики в reg. Если reg == nil — счётчики не регистрируются.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Number of issued session tokens by method.",
		}, []string{"method"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Number of refresh attempts by result.",
		}, []string{"result"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_total",
			Help:      "Number of form submissions by mode and result.",
		}, []string{"mode", "result"}),
	}

	if reg != nil {
		reg.MustRegister(m.TokensIssued, m.Refreshes, m.Submissions)
	}

	return m
}

// TokenIssued учитывает выданный токен.
func (m *Metrics) TokenIssued(method string) {
	if m == nil {
		return
	}
	m.TokensIssued.WithLabelValues(method).Inc()
}

// Refresh учитывает попытку обновления токена.
func (m *Metrics) Refresh(result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(result).Inc()
}

// Submission учитывает отправку формы.
func (m *Metrics) Submission(mode, result string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(mode, result).Inc()
}
