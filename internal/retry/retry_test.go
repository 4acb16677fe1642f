package retry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type statusErr struct {
	status  int
	message string
}

func (e *statusErr) Error() string {
	return fmt.Sprintf("%s (status %d)", e.message, e.status)
}

func (e *statusErr) HTTPStatus() int {
	return e.status
}

type recordingNotifier struct {
	mu       sync.Mutex
	hits     []Event
	resolved []SuccessEvent
}

func (n *recordingNotifier) RateLimitHit(_ context.Context, event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hits = append(n.hits, event)
}

func (n *recordingNotifier) RateLimitResolved(_ context.Context, event SuccessEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, event)
}

var _ = Describe("Do", func() {
	var (
		slept    []time.Duration
		notifier *recordingNotifier
		cfg      Config
	)

	recordSleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	BeforeEach(func() {
		slept = nil
		notifier = &recordingNotifier{}
		cfg = Config{
			MaxRetries:        3,
			InitialDelay:      1000 * time.Millisecond,
			BackoffMultiplier: 2,
			Notifier:          notifier,
			sleep:             recordSleep,
			jitter:            func() float64 { return 0 },
		}
	})

	It("invokes the operation exactly maxRetries+1 times and returns the original error on a persistent 429", func() {
		calls := 0
		original := &statusErr{status: 429, message: "rate limited"}

		_, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
			calls++
			return 0, original
		})

		Expect(calls).To(Equal(4))
		Expect(err).To(BeIdenticalTo(error(original)))
	})

	It("short-circuits on a non-retryable status with no delay", func() {
		calls := 0
		original := &statusErr{status: 404, message: "not found"}

		_, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
			calls++
			return 0, original
		})

		Expect(calls).To(Equal(1))
		Expect(slept).To(BeEmpty())
		Expect(err).To(BeIdenticalTo(error(original)))
	})

	It("doubles the delay per attempt when jitter is zero", func() {
		_, _ = Do(context.Background(), cfg, func(context.Context) (int, error) {
			return 0, &statusErr{status: 503, message: "unavailable"}
		})

		Expect(slept).To(Equal([]time.Duration{
			1000 * time.Millisecond,
			2000 * time.Millisecond,
			4000 * time.Millisecond,
		}))
	})

	It("caps the delay at MaxDelay", func() {
		cfg.MaxDelay = 1500 * time.Millisecond

		_, _ = Do(context.Background(), cfg, func(context.Context) (int, error) {
			return 0, &statusErr{status: 503, message: "unavailable"}
		})

		Expect(slept).To(Equal([]time.Duration{
			1000 * time.Millisecond,
			1500 * time.Millisecond,
			1500 * time.Millisecond,
		}))
	})

	It("keeps jittered delays within ±25% of the exponential term", func() {
		for _, j := range []float64{-0.25, -0.1, 0.1, 0.25} {
			c := cfg
			c.jitter = func() float64 { return j }
			Expect(c.withDefaults().delayFor(0)).To(And(
				BeNumerically(">=", 750*time.Millisecond),
				BeNumerically("<=", 1250*time.Millisecond),
			))
			Expect(c.withDefaults().delayFor(1)).To(And(
				BeNumerically(">=", 1500*time.Millisecond),
				BeNumerically("<=", 2500*time.Millisecond),
			))
		}
	})

	It("retries errors whose message indicates a network condition", func() {
		calls := 0
		_, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
			calls++
			if calls < 2 {
				return 0, errors.New("read tcp: connection reset: ECONNRESET")
			}
			return 7, nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(2))
	})

	It("does not retry errors without a status or network fragment", func() {
		calls := 0
		_, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
			calls++
			return 0, errors.New("validation failed")
		})

		Expect(err).To(MatchError("validation failed"))
		Expect(calls).To(Equal(1))
	})

	It("emits a rate-limit-hit event before each 403 wait and one success event after recovery", func() {
		calls := 0
		result, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
			calls++
			if calls <= 2 {
				return 0, &statusErr{status: 403, message: "secondary rate limit"}
			}
			return 42, nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(42))

		// Two failing attempts at 1s and 2s of simulated delay.
		Expect(slept).To(Equal([]time.Duration{
			1000 * time.Millisecond,
			2000 * time.Millisecond,
		}))

		Expect(notifier.hits).To(HaveLen(2))
		Expect(notifier.hits[0].Retrying).To(BeTrue())
		Expect(notifier.hits[0].Attempt).To(Equal(1))
		Expect(notifier.hits[0].MaxRetries).To(Equal(3))
		Expect(notifier.hits[0].Error.Status).To(Equal(403))
		Expect(notifier.hits[1].Attempt).To(Equal(2))

		Expect(notifier.resolved).To(HaveLen(1))
		Expect(notifier.resolved[0].Attempts).To(Equal(3))
	})

	It("emits no success event when no attempt was rate limited", func() {
		calls := 0
		_, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, &statusErr{status: 503, message: "unavailable"}
			}
			return 1, nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(notifier.hits).To(BeEmpty())
		Expect(notifier.resolved).To(BeEmpty())
	})

	It("invokes OnRetry with the attempt index and computed delay", func() {
		type retryCall struct {
			attempt int
			delay   time.Duration
		}
		var calls []retryCall
		cfg.OnRetry = func(attempt int, delay time.Duration, _ error) {
			calls = append(calls, retryCall{attempt, delay})
		}

		_, _ = Do(context.Background(), cfg, func(context.Context) (int, error) {
			return 0, &statusErr{status: 502, message: "bad gateway"}
		})

		Expect(calls).To(Equal([]retryCall{
			{0, 1000 * time.Millisecond},
			{1, 2000 * time.Millisecond},
			{2, 4000 * time.Millisecond},
		}))
	})

	It("stops waiting when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cfg.sleep = nil // real clock
		cfg.InitialDelay = 10 * time.Second

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		_, err := Do(ctx, cfg, func(context.Context) (int, error) {
			return 0, &statusErr{status: 503, message: "unavailable"}
		})

		Expect(err).To(MatchError(context.Canceled))
		Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
	})
})

var _ = Describe("GitHubAPI", func() {
	It("uses the GitHub-tuned budget and rethrows after exhaustion", func() {
		// The convenience wrapper sleeps for real, so exercise only the
		// non-retryable path here; budget behavior is covered via Do.
		calls := 0
		original := &statusErr{status: 422, message: "unprocessable"}

		_, err := GitHubAPI(context.Background(), nil, nil, func(context.Context) (int, error) {
			calls++
			return 0, original
		})

		Expect(calls).To(Equal(1))
		Expect(err).To(BeIdenticalTo(error(original)))
	})

	It("passes results through unchanged", func() {
		result, err := GitHubAPI(context.Background(), nil, nil, func(context.Context) (string, error) {
			return "ok", nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal("ok"))
	})
})
