package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ events []string }

func (r *recorder) Produce(_ context.Context, event string, _ map[string]interface{}) {
	r.events = append(r.events, event)
}

func TestTriggerForwardsAndKeepsRecent(t *testing.T) {
	rec := &recorder{}
	n := New(rec)
	require.NoError(t, n.Trigger(context.Background(), "showNotify", map[string]interface{}{"type": "success"}))
	assert.Equal(t, []string{"tracker.interface.showNotify"}, rec.events)
	assert.Equal(t, []Event{{Name: "showNotify", Payload: map[string]interface{}{"type": "success"}}}, n.Recent())

	for i := 0; i < keep+5; i++ {
		_ = n.Trigger(context.Background(), "click", map[string]interface{}{"value": fmt.Sprint(i)})
	}
	recent := n.Recent()
	assert.Len(t, recent, keep)
	assert.Equal(t, fmt.Sprint(keep+4), recent[len(recent)-1].Payload["value"])
}

func TestNilProducer(t *testing.T) {
	assert.NoError(t, New(nil).Trigger(context.Background(), "click", nil))
}
