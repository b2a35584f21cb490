package domain

type Trend struct {
	Scans    string `json:"scans"`
	Diseases string `json:"diseases"`
	Health   string `json:"health"`
}

type DashboardStats struct {
	TotalScans       int   `json:"total_scans"`
	DiseasesDetected int   `json:"diseases_detected"`
	HealthyScans     int   `json:"healthy_scans"`
	Accuracy         int   `json:"accuracy"`
	Trends           Trend `json:"trends"`
}

type Detection struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Crop       string `json:"crop"`
	Disease    string `json:"disease"`
	Severity   string `json:"severity"`
	Confidence int    `json:"confidence"`
	Status     string `json:"status"`
}

type CropHealth struct {
	Crop          string `json:"crop"`
	HealthScore   int    `json:"health_score"`
	TotalScans    int    `json:"total_scans"`
	HealthyScans  int    `json:"healthy_scans"`
	DiseasedScans int    `json:"diseased_scans"`
}

type WeatherImpact struct {
	Condition       string   `json:"condition"`
	Risk            string   `json:"risk"`
	Recommendations []string `json:"recommendations"`
}

// ClientSummary resume el historial propio del cliente.
type ClientSummary struct {
	TotalScans        int              `json:"total_scans"`
	HealthyScans      int              `json:"healthy_scans"`
	HealthyPercentage int              `json:"healthy_percentage"`
	IssuesDetected    int              `json:"issues_detected"`
	Latest            []AnalysisResult `json:"latest"`
}

// DashboardReport combina los datos de muestra con el historial del cliente.
type DashboardReport struct {
	TimeRange        string         `json:"time_range"`
	Stats            DashboardStats `json:"stats"`
	RecentDetections []Detection    `json:"recent_detections"`
	CropHealth       []CropHealth   `json:"crop_health"`
	WeatherImpact    WeatherImpact  `json:"weather_impact"`
	Client           ClientSummary  `json:"client"`
}
