package ports

// Metrics recibe la telemetría de feed, tracker, señales y ledger.
type Metrics interface {
	FeedState(state string)
	FeedEvent(kind string)
	FeedGap(ticker string)
	Reconnect()
	ProviderFailure(kind string)
	Signal(strategy, direction string)
	Ledger(strategy, ticker string, position int, cash float64)
	Probability(ticker string, p float64)
}

// NopMetrics descarta todo. Es el default cuando no hay recorder configurado.
type NopMetrics struct{}

func (NopMetrics) FeedState(string) {}
func (NopMetrics) FeedEvent(string) {}
func (NopMetrics) FeedGap(string) {}
func (NopMetrics) Reconnect() {}
func (NopMetrics) ProviderFailure(string) {}
func (NopMetrics) Signal(string, string) {}
func (NopMetrics) Ledger(string, string, int, float64) {}
func (NopMetrics) Probability(string, float64) {}
