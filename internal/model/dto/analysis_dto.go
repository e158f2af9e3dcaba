package dto

// SubmitAnalysisRequest 对某次通话发起分析
type SubmitAnalysisRequest struct {
	CallID       int64  `json:"call_id" binding:"required"`
	RecordingURL string `json:"recording_url,omitempty" binding:"omitempty,url"` // 缺省用通话自带录音
}

// SubmitAnalysisResponse 发起分析响应
type SubmitAnalysisResponse struct {
	AnalysisID  int64  `json:"analysis_id"`
	RecordingID int64  `json:"recording_id"`
	Status      string `json:"status"`
}

// AnalysisDetail 分析详情
type AnalysisDetail struct {
	ID                 int64    `json:"id"`
	CallID             int64    `json:"call_id"`
	RecordingID        int64    `json:"recording_id"`
	Status             string   `json:"status"`
	SentimentScore     int      `json:"sentiment_score,omitempty"`
	EngagementScore    int      `json:"engagement_score,omitempty"`
	ConfidenceScore    int      `json:"confidence_score,omitempty"`
	ClosureProbability int      `json:"closure_probability,omitempty"`
	Summary            string   `json:"summary,omitempty"`
	KeyPoints          []string `json:"key_points,omitempty"`
	Objections         []string `json:"objections,omitempty"`
	NextSteps          string   `json:"next_steps,omitempty"`
	ErrorMessage       string   `json:"error_message,omitempty"`
	CompletedAt        string   `json:"completed_at,omitempty"`
	CreatedAt          string   `json:"created_at"`
}

// AnalysisResultRequest 外部分析服务回调结果
type AnalysisResultRequest struct {
	AnalysisID         int64    `json:"analysis_id" binding:"required"`
	Status             string   `json:"status" binding:"required,oneof=completed failed"`
	SentimentScore     int      `json:"sentiment_score,omitempty" binding:"omitempty,min=0,max=100"`
	EngagementScore    int      `json:"engagement_score,omitempty" binding:"omitempty,min=0,max=100"`
	ConfidenceScore    int      `json:"confidence_score,omitempty" binding:"omitempty,min=0,max=100"`
	ClosureProbability int      `json:"closure_probability,omitempty" binding:"omitempty,min=0,max=100"`
	Summary            string   `json:"summary,omitempty"`
	KeyPoints          []string `json:"key_points,omitempty"`
	Objections         []string `json:"objections,omitempty"`
	NextSteps          string   `json:"next_steps,omitempty"`
	ErrorMessage       string   `json:"error_message,omitempty"`
}

// AnalysisStatusResponse 轮询用的状态响应
type AnalysisStatusResponse struct {
	AnalysisID   int64  `json:"analysis_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}
