package heph

// Job is the provider-side asynchronous transcription task as observed by
// upload and polling.
type Job struct {
	TaskID   string
	Status   string
	Progress string
}

// Segment is one timed span of the transcript, as emitted by the provider.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the full transcript plus its timed segments.
type Result struct {
	Text     string
	Segments []Segment
}

// StatusCompleted is the terminal success status reported by the provider.
const StatusCompleted = "Completed"

// statusCodeOK is the envelope code the provider uses for success.
const statusCodeOK = "10000"

// envelope is the common statusCode/message wrapper on every JSON response.
// Non-2xx responses carry only these two fields.
type envelope struct {
	StatusCode string `json:"statusCode"`
	Message    string `json:"message"`
}

type loginResponse struct {
	envelope
	Data struct {
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	} `json:"data"`
}

type uploadResponse struct {
	envelope
	Data struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

type statusResponse struct {
	envelope
	Data struct {
		Status             string `json:"status"`
		Progress           string `json:"progress"`
		ExceptionTraceback string `json:"exception_traceback"`
		Text               string `json:"text"`
	} `json:"data"`
}
