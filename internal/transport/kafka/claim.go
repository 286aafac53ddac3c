package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/queue"
)

type groupHandler struct {
	b      *Broker
	queue  string
	handle queue.HandleFunc
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim runs each message once. A failed job is republished to the
// retry topic with its attempt count or moved to the dead topic, and only then
// is the message marked. Retry messages are held until their not-before time,
// which only delays the retry topic's partition.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log := h.b.logger
	for msg := range claim.Messages() {
		if due, ok := notBefore(msg); ok {
			if wait := due.Sub(h.b.now()); wait > 0 && !queue.SleepWithContext(sess.Context(), wait) {
				// left unmarked so the next session redelivers it
				return nil
			}
		}
		var job queue.Job
		if err := json.Unmarshal(msg.Value, &job); err != nil {
			log.Error("kafka bad json", logx.String("topic", msg.Topic), logx.Err(err))
			sess.MarkMessage(msg, "")
			continue
		}
		if strings.TrimSpace(job.ID) == "" {
			log.Error("kafka empty job id", logx.String("topic", msg.Topic))
			sess.MarkMessage(msg, "")
			continue
		}
		if job.Queue == "" {
			job.Queue = h.queue
		}
		job.Attempt++

		ctx := sess.Context()
		if err := h.handle(ctx, job); err != nil {
			if !h.reschedule(ctx, job, err) {
				// left unmarked so the next session redelivers it
				return nil
			}
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

// reschedule reports whether the failed job was handed off and its message may be marked.
func (h *groupHandler) reschedule(ctx context.Context, job queue.Job, cause error) bool {
	log := h.b.logger.With(
		logx.String("queue", job.Queue),
		logx.String("job_id", job.ID),
		logx.Int("attempt", job.Attempt),
	)
	job.LastError = cause.Error()

	if !h.b.policy.ShouldRetry(job.Attempt, cause) {
		if err := h.b.send(ctx, h.b.deadTopic(job.Queue), job); err != nil {
			log.Error("kafka dead letter failed", logx.Err(err))
			return false
		}
		log.Warn("kafka job moved to dead letter topic")
		return true
	}

	due := h.b.now().Add(h.b.policy.Delay(job.Attempt))
	header := sarama.RecordHeader{
		Key:   []byte(notBeforeHeader),
		Value: []byte(strconv.FormatInt(due.UnixMilli(), 10)),
	}
	if err := h.b.send(ctx, h.b.retryTopic(job.Queue), job, header); err != nil {
		log.Error("kafka retry publish failed", logx.Err(err))
		return false
	}
	log.Debug("kafka job rescheduled", logx.Time("not_before", due))
	return true
}

// notBefore reads the earliest processing time of a retry message.
func notBefore(msg *sarama.ConsumerMessage) (time.Time, bool) {
	for _, hdr := range msg.Headers {
		if hdr == nil || string(hdr.Key) != notBeforeHeader {
			continue
		}
		ms, err := strconv.ParseInt(string(hdr.Value), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}
