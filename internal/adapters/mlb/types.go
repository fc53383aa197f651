package mlb

// DTOs raw de la Stats API, limitados a los campos que se usan.

type liveFeed struct {
	GameData struct {
		Status gameStatus `json:"status"`
	} `json:"gameData"`
	LiveData struct {
		Linescore linescore `json:"linescore"`
		Plays     struct {
			CurrentPlay *currentPlay `json:"currentPlay"`
		} `json:"plays"`
	} `json:"liveData"`
}

type gameStatus struct {
	AbstractGameState string `json:"abstractGameState"`
	DetailedState     string `json:"detailedState"`
}

type linescore struct {
	CurrentInning int    `json:"currentInning"`
	IsTopInning   *bool  `json:"isTopInning"`
	InningHalf    string `json:"inningHalf"`
	Balls         int    `json:"balls"`
	Strikes       int    `json:"strikes"`
	Outs          int    `json:"outs"`
	Teams         struct {
		Home teamLine `json:"home"`
		Away teamLine `json:"away"`
	} `json:"teams"`
	Offense *offense `json:"offense"`
}

type teamLine struct {
	Runs int `json:"runs"`
}

// offense tiene un objeto por base ocupada; la presencia es lo que cuenta.
type offense struct {
	First  *struct{} `json:"first"`
	Second *struct{} `json:"second"`
	Third  *struct{} `json:"third"`
}

type currentPlay struct {
	About struct {
		Inning     int    `json:"inning"`
		HalfInning string `json:"halfInning"`
	} `json:"about"`
	Count struct {
		Balls   int `json:"balls"`
		Strikes int `json:"strikes"`
		Outs    int `json:"outs"`
	} `json:"count"`
	RunnerIndex []int `json:"runnerIndex"`
}

type scheduleResponse struct {
	Dates []struct {
		Date  string          `json:"date"`
		Games []scheduledGame `json:"games"`
	} `json:"dates"`
}

type scheduledGame struct {
	GamePk       int64      `json:"gamePk"`
	GameDate     string     `json:"gameDate"`
	OfficialDate string     `json:"officialDate"`
	GameNumber   int        `json:"gameNumber"`
	DoubleHeader string     `json:"doubleHeader"`
	Status       gameStatus `json:"status"`
	Teams        struct {
		Home scheduledTeam `json:"home"`
		Away scheduledTeam `json:"away"`
	} `json:"teams"`
}

type scheduledTeam struct {
	Score *int `json:"score"`
	Team  struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
}
