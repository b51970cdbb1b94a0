package config

type WorkerKeyStruct struct {
	SessionEventsQueue string
	ResultsQueue       string
}

var WorkerKey = &WorkerKeyStruct{
	SessionEventsQueue: "session_events_queue",
	ResultsQueue:       "exam_results_queue",
}
