package mlb

// teamNames mapea el código de equipo de los tickers de Kalshi a los nombres
// que usa la Stats API. Algunos equipos tienen más de un nombre histórico.
var teamNames = map[string][]string{
	"ATH": {"Athletics", "Oakland Athletics"},
	"OAK": {"Oakland Athletics", "Athletics"},
	"ATL": {"Atlanta Braves"},
	"AZ":  {"Arizona Diamondbacks"},
	"ARI": {"Arizona Diamondbacks"},
	"BAL": {"Baltimore Orioles"},
	"BOS": {"Boston Red Sox"},
	"CHC": {"Chicago Cubs"},
	"CIN": {"Cincinnati Reds"},
	"CLE": {"Cleveland Guardians"},
	"COL": {"Colorado Rockies"},
	"CWS": {"Chicago White Sox"},
	"DET": {"Detroit Tigers"},
	"HOU": {"Houston Astros"},
	"KC":  {"Kansas City Royals"},
	"LAA": {"Los Angeles Angels"},
	"LAD": {"Los Angeles Dodgers"},
	"MIA": {"Miami Marlins"},
	"MIL": {"Milwaukee Brewers"},
	"MIN": {"Minnesota Twins"},
	"NYM": {"New York Mets"},
	"NYY": {"New York Yankees"},
	"PHI": {"Philadelphia Phillies"},
	"PIT": {"Pittsburgh Pirates"},
	"SD":  {"San Diego Padres"},
	"SEA": {"Seattle Mariners"},
	"SF":  {"San Francisco Giants"},
	"STL": {"St. Louis Cardinals"},
	"TB":  {"Tampa Bay Rays"},
	"TEX": {"Texas Rangers"},
	"TOR": {"Toronto Blue Jays"},
	"WSH": {"Washington Nationals"},
}

// isTeam indica si name es uno de los nombres del código code.
func isTeam(code, name string) bool {
	for _, n := range teamNames[code] {
		if n == name {
			return true
		}
	}
	return false
}
