package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPipelineRun(t *testing.T) {
	before := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("command", "ok"))
	RecordPipelineRun("command", "ok", 2*time.Second)
	after := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("command", "ok"))

	assert.Equal(t, before+1, after)
}

func TestRecordItemsFetched(t *testing.T) {
	before := testutil.ToFloat64(itemsFetchedTotal.WithLabelValues("reddit"))
	RecordItemsFetched("reddit", 7)
	after := testutil.ToFloat64(itemsFetchedTotal.WithLabelValues("reddit"))

	assert.Equal(t, before+7, after)
}

func TestRecordSummarizationFailure(t *testing.T) {
	before := testutil.ToFloat64(summarizeFailuresTotal)
	RecordSummarization(time.Second, false)
	after := testutil.ToFloat64(summarizeFailuresTotal)

	assert.Equal(t, before+1, after)
}

func TestRecordDigestPost(t *testing.T) {
	before := testutil.ToFloat64(digestPostsTotal.WithLabelValues("skipped"))
	RecordDigestPost("skipped")
	after := testutil.ToFloat64(digestPostsTotal.WithLabelValues("skipped"))

	assert.Equal(t, before+1, after)
}

func TestRecordRunRejected(t *testing.T) {
	before := testutil.ToFloat64(runsRejectedTotal)
	RecordRunRejected()
	after := testutil.ToFloat64(runsRejectedTotal)

	assert.Equal(t, before+1, after)
}
