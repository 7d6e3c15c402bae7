package mailchimp

// Outcome is the discriminator of an Envelope
type Outcome string

const (
	// OutcomeSuccess marks a completed operation
	OutcomeSuccess Outcome = "success"
	// OutcomeError marks a classified or local validation error
	OutcomeError Outcome = "error"
)

// ErrorCode is a stable, machine-readable error classification. Remote
// errors use the decimal HTTP status ("404"); local errors use a name.
type ErrorCode string

// Local error codes
const (
	CodeInvalidEmail          ErrorCode = "invalid_email"
	CodeAlreadyInList         ErrorCode = "already_in_list"
	CodeNotInList             ErrorCode = "not_in_list"
	CodeNotChaining           ErrorCode = "not_chaining"
	CodeSettingsError         ErrorCode = "settings_error"
	CodeEmptyName             ErrorCode = "empty_name"
	CodeEmptyContact          ErrorCode = "empty_contact"
	CodeEmptyCampaignDefaults ErrorCode = "empty_campaign_defaults"
	CodeInvalidListID         ErrorCode = "invalid_list_id"
	CodeInvalidCampaignID     ErrorCode = "invalid_campaign_id"
	CodeMembersFailed         ErrorCode = "members_failed"
	CodeUnknown               ErrorCode = "unknown"
)

const unknownShapeMessage = `Unknown error. See "raw" and report it to the administrator.`

// Envelope is the uniform result every chained operation leaves behind.
// It is replaced wholesale by each operation.
type Envelope struct {
	Outcome Outcome   `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Code    ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`
	Status  int       `json:"status,omitempty" yaml:"status,omitempty"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
	ID      string    `json:"id,omitempty" yaml:"id,omitempty"`
	Payload any       `json:"payload,omitempty" yaml:"payload,omitempty"`
	Raw     any       `json:"raw,omitempty" yaml:"raw,omitempty"`

	// Members and Results are only set by AddMembers
	Members []string       `json:"members,omitempty" yaml:"members,omitempty"`
	Results []MemberResult `json:"results,omitempty" yaml:"results,omitempty"`
}

// MemberResult is the outcome of one address in a bulk add
type MemberResult struct {
	Email    string   `json:"email" yaml:"email"`
	Envelope Envelope `json:"envelope" yaml:"envelope"`
}

// IsError reports whether the envelope records an error
func (e Envelope) IsError() bool {
	return e.Outcome == OutcomeError
}

// IsSuccess reports whether the envelope records a success
func (e Envelope) IsSuccess() bool {
	return e.Outcome == OutcomeSuccess
}

// Err converts an error envelope into an *APIError, or nil on success.
func (e Envelope) Err() error {
	if !e.IsError() {
		return nil
	}
	return &APIError{
		StatusCode: e.Status,
		Code:       e.Code,
		Message:    e.Message,
	}
}

// PayloadMap returns the payload as a JSON object, if it is one.
func (e Envelope) PayloadMap() (map[string]any, bool) {
	m, ok := e.Payload.(map[string]any)
	return m, ok
}

func success(body any) Envelope {
	env := Envelope{
		Outcome: OutcomeSuccess,
		Message: "See payload.",
		Payload: body,
	}
	if id, ok := stringField(body, "id"); ok {
		env.ID = id
	}
	return env
}

func failure(code ErrorCode, message string) Envelope {
	return Envelope{
		Outcome: OutcomeError,
		Code:    code,
		Message: message,
	}
}

func unknownShape(body any) Envelope {
	env := failure(CodeUnknown, unknownShapeMessage)
	env.Raw = body
	return env
}

// stringField reads a non-empty string key from a decoded JSON object.
func stringField(body any, key string) (string, bool) {
	m, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok && s != ""
}

func hasField(body any, key string) bool {
	m, ok := body.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}
