package domain

import "strings"

// TopicError is the sentinel label returned when the classifier's
// output is not a member of the configured topic set.
const TopicError = "error"

// TopicSet is a fixed, closed vocabulary of lowercase single-word
// topic labels configured at startup. Classification results are
// constrained to this set plus the TopicError sentinel.
type TopicSet struct {
	labels []string
}

// NewTopicSet builds a topic set from the given labels. Labels are
// lowercased and blank entries are dropped.
func NewTopicSet(labels []string) TopicSet {
	cleaned := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			cleaned = append(cleaned, l)
		}
	}
	return TopicSet{labels: cleaned}
}

// Labels returns the topic labels in configuration order.
func (t TopicSet) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Contains reports whether label is a member of the set.
func (t TopicSet) Contains(label string) bool {
	for _, l := range t.labels {
		if l == label {
			return true
		}
	}
	return false
}

// LongestLabel returns the length of the longest label, used to cap
// the classifier's output length.
func (t TopicSet) LongestLabel() int {
	longest := 0
	for _, l := range t.labels {
		if len(l) > longest {
			longest = len(l)
		}
	}
	return longest
}

// Join returns the labels joined for prompt interpolation.
func (t TopicSet) Join() string {
	return strings.Join(t.labels, ", ")
}
