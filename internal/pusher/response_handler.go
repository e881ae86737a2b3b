package pusher

import "fmt"

// Result labels used for logs, metrics and the push log
const (
	ResultSucceeded    = "succeeded"
	ResultHTTPError    = "http_error"
	ResultNetworkError = "network_error"
)

// PushStatus is the classification of a push result
type PushStatus struct {
	Result    string
	Succeeded bool
	LastError *string
}

// ProcessPushResult classifies a push. Any 2xx is a success; everything else
// is a failure that is logged and not retried.
func ProcessPushResult(result *PushResult) PushStatus {
	if result.Error != nil {
		errorMsg := fmt.Sprintf("Network error: %v", result.Error)
		return PushStatus{Result: ResultNetworkError, LastError: &errorMsg}
	}

	if result.HTTPStatus == nil {
		errorMsg := "No HTTP status code received"
		return PushStatus{Result: ResultNetworkError, LastError: &errorMsg}
	}

	httpStatus := *result.HTTPStatus
	if httpStatus >= 200 && httpStatus < 300 {
		return PushStatus{Result: ResultSucceeded, Succeeded: true}
	}

	errorMsg := fmt.Sprintf("HTTP %d", httpStatus)
	return PushStatus{Result: ResultHTTPError, LastError: &errorMsg}
}
