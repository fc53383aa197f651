package kalshi

import "encoding/json"

// DTOs raw de la API de Kalshi. Solo se usan dentro de este paquete.
// La conversión a domain se hace en mapping.go.

// --- REST ---

type marketsResponse struct {
	Markets []apiMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

type singleMarketResponse struct {
	Market apiMarket `json:"market"`
}

type apiMarket struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	SeriesTicker string `json:"series_ticker"`
	Title        string `json:"title"`
	YesSubTitle  string `json:"yes_sub_title"`
	Status       string `json:"status"`
	Result       string `json:"result"`
	YesBid       int    `json:"yes_bid"`
	YesAsk       int    `json:"yes_ask"`
	LastPrice    int    `json:"last_price"`
	Volume       int64  `json:"volume"`
	OpenTime     string `json:"open_time"`
	CloseTime    string `json:"close_time"`
}

type candlesticksResponse struct {
	Ticker       string           `json:"ticker"`
	Candlesticks []apiCandlestick `json:"candlesticks"`
}

// Los campos de precio pueden venir null cuando no hubo actividad en el intervalo.
type apiCandlestick struct {
	EndPeriodTS int64         `json:"end_period_ts"`
	Price       apiPriceStats `json:"price"`
	YesBid      apiPriceStats `json:"yes_bid"`
	YesAsk      apiPriceStats `json:"yes_ask"`
	Volume      int64         `json:"volume"`
}

type apiPriceStats struct {
	Open  *float64 `json:"open"`
	Close *float64 `json:"close"`
	High  *float64 `json:"high"`
	Low   *float64 `json:"low"`
	Mean  *float64 `json:"mean"`
}

// --- WebSocket ---

type command struct {
	ID     int64  `json:"id"`
	Cmd    string `json:"cmd"`
	Params any    `json:"params"`
}

type subscribeParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers"`
}

// envelope es cualquier mensaje entrante. seq viene en el envelope para los
// canales de orderbook; algunos mensajes lo repiten dentro de msg.
type envelope struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	SID  int64           `json:"sid"`
	Seq  int64           `json:"seq"`
	Msg  json.RawMessage `json:"msg"`
}

type snapshotMsg struct {
	MarketTicker string   `json:"market_ticker"`
	Yes          [][2]int `json:"yes"`
	No           [][2]int `json:"no"`
	Seq          int64    `json:"seq"`
}

type deltaMsg struct {
	MarketTicker string `json:"market_ticker"`
	Price        int    `json:"price"`
	Delta        int    `json:"delta"`
	Side         string `json:"side"`
	Seq          int64  `json:"seq"`
}

type fillMsg struct {
	MarketTicker string `json:"market_ticker"`
	Side         string `json:"side"`
	YesPrice     int    `json:"yes_price"`
	Count        int    `json:"count"`
	Action       string `json:"action"`
}

type subscribedMsg struct {
	Channel string `json:"channel"`
	SID     int64  `json:"sid"`
}

type errorMsg struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
