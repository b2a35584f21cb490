package domain

// Prioridades de un consejo agrícola.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

type ForecastDay struct {
	Day        string `json:"day"`
	High       int    `json:"high"`
	Low        int    `json:"low"`
	Condition  string `json:"condition"`
	Icon       string `json:"icon"`
	RainChance int    `json:"rain_chance"`
}

type FarmingTip struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

type WeatherSummary struct {
	BestPlantingDay  string `json:"best_planting_day"`
	RainExpected     string `json:"rain_expected"`
	IrrigationNeeded string `json:"irrigation_needed"`
	PestRisk         string `json:"pest_risk"`
}

// WeatherSnapshot agrupa condiciones actuales, pronóstico y consejos.
type WeatherSnapshot struct {
	Location    string         `json:"location"`
	Temperature int            `json:"temperature"`
	Condition   string         `json:"condition"`
	Humidity    int            `json:"humidity"`
	WindSpeed   int            `json:"wind_speed"`
	Visibility  int            `json:"visibility"`
	UVIndex     int            `json:"uv_index"`
	Forecast    []ForecastDay  `json:"forecast"`
	Tips        []FarmingTip   `json:"tips"`
	Summary     WeatherSummary `json:"summary"`
}
