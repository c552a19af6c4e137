package ingest

import "strings"

// SightingsTopic is the subscription filter for every device's sightings:
// <prefix>/+ where the last level is the reporting device id.
func SightingsTopic(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/+"
}

// StatusTopic carries the retained online/offline status of the ingester
func StatusTopic(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		return prefix[:i] + "/ingest/status"
	}
	return prefix + "/ingest/status"
}

// DeviceFromTopic returns the device level of a sightings topic
func DeviceFromTopic(prefix, topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, strings.TrimSuffix(prefix, "/")+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
