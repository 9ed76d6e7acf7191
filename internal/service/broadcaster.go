package service

// Event types pushed to clients following a test
const (
	EventVerdict         = "verdict"
	EventProblemAdvanced = "problem_advanced"
	EventTestEnded       = "test_ended"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	Publish(testID string, msgType string, payload interface{})
	CloseTest(testID string)
}
