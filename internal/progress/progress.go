// Package progress provides shared logging helpers for pipeline stages and
// external data sources.
package progress

import (
	"log"
	"time"
)

// LogRequest logs an outbound request to an external data source.
func LogRequest(source, method, url string, params map[string]interface{}) {
	if len(params) > 0 {
		log.Printf("[%s] %s %s params=%v", source, method, url, params)
	} else {
		log.Printf("[%s] %s %s", source, method, url)
	}
}

// LogResponse logs a response received from an external data source.
func LogResponse(source string, statusCode int, duration time.Duration, resultCount int) {
	log.Printf("[%s] response status=%d duration=%dms results=%d",
		source, statusCode, duration.Milliseconds(), resultCount)
}

// LogError logs an error from a named operation.
func LogError(source, operation string, err error) {
	log.Printf("[%s] %s error: %v", source, operation, err)
}

// LogStage logs a stage milestone.
func LogStage(stage, format string, args ...interface{}) {
	log.Printf("[%s] "+format, append([]interface{}{stage}, args...)...)
}

// LogWrite logs a file written by a stage.
func LogWrite(stage, path string, count int) {
	log.Printf("[%s] wrote %d records -> %s", stage, count, path)
}
