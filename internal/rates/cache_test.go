package rates_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/boostify/storefront/internal/rates"
)

func TestRatesCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rates Cache Suite")
}

var _ = Describe("Cache", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	Describe("with a seeded rate table", func() {
		var cache *rates.Cache

		BeforeEach(func() {
			cache = rates.NewCache("", time.Hour, time.Second, logger)
			cache.Seed(map[string]float64{"EUR": 0.9, "GBP": 0.8})
		})

		It("converts USD cents into the display currency", func() {
			converted, err := cache.Convert(1499, "EUR")
			Expect(err).ToNot(HaveOccurred())
			Expect(converted).To(BeNumerically("~", 13.49, 0.01))
		})

		It("treats USD as the identity rate", func() {
			rate, err := cache.Rate("USD")
			Expect(err).ToNot(HaveOccurred())
			Expect(rate).To(Equal(float64(1)))
		})

		It("rejects currencies the feed does not carry", func() {
			_, err := cache.Rate("XYZ")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("against a live feed", func() {
		It("fetches rates lazily on first use", func() {
			feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92}}`))
			}))
			defer feed.Close()

			cache := rates.NewCache(feed.URL, time.Hour, time.Second, logger)

			rate, err := cache.Rate("EUR")
			Expect(err).ToNot(HaveOccurred())
			Expect(rate).To(Equal(0.92))
		})

		It("serves the last good snapshot when the feed goes down", func() {
			var healthy atomic.Bool
			healthy.Store(true)
			feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !healthy.Load() {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92}}`))
			}))
			defer feed.Close()

			// nanosecond interval forces a refresh attempt on every read
			cache := rates.NewCache(feed.URL, time.Nanosecond, time.Second, logger)

			_, err := cache.Rate("EUR")
			Expect(err).ToNot(HaveOccurred())

			healthy.Store(false)

			rate, err := cache.Rate("EUR")
			Expect(err).ToNot(HaveOccurred())
			Expect(rate).To(Equal(0.92))
		})

		It("fetches once for a burst of concurrent readers", func() {
			var fetches atomic.Int32
			feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fetches.Add(1)
				w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92}}`))
			}))
			defer feed.Close()

			cache := rates.NewCache(feed.URL, time.Hour, time.Second, logger)

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					rate, err := cache.Rate("EUR")
					Expect(err).ToNot(HaveOccurred())
					Expect(rate).To(Equal(0.92))
				}()
			}
			wg.Wait()

			Expect(fetches.Load()).To(Equal(int32(1)))
		})

		It("fails only when no snapshot was ever fetched", func() {
			feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer feed.Close()

			cache := rates.NewCache(feed.URL, time.Hour, time.Second, logger)

			_, err := cache.Rate("EUR")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Snapshot", func() {
		It("returns a copy of the current table", func() {
			cache := rates.NewCache("", time.Hour, time.Second, logger)
			cache.Seed(map[string]float64{"EUR": 0.9})

			snapshot, fetchedAt := cache.Snapshot()
			Expect(fetchedAt).ToNot(BeZero())

			snapshot["EUR"] = 99

			rate, err := cache.Rate("EUR")
			Expect(err).ToNot(HaveOccurred())
			Expect(rate).To(Equal(0.9))
		})
	})
})
