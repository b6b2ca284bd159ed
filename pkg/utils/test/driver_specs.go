package testutils

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/masque/pkg/snapshot"
	"github.com/papercomputeco/masque/pkg/sse"
)

// DescribeSnapshotDriver registers the behavior every snapshot.Driver must
// share. newDriver is called once per test; the returned driver must be empty.
func DescribeSnapshotDriver(newDriver func() snapshot.Driver) {
	var (
		d   snapshot.Driver
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		d = nil
		d = newDriver()
	})

	AfterEach(func() {
		if d != nil {
			Expect(d.Close()).To(Succeed())
		}
	})

	record := func(seq uint64, data string) *snapshot.Record {
		id, typ := "id-"+data, "type-"+data
		ev := sse.NewEvent(&id, &typ, data)
		return snapshot.NewRecord(seq, "receipt-"+data, "session", ev, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))
	}

	It("reports NotFoundError before anything is saved", func() {
		_, err := d.Latest(ctx)
		Expect(snapshot.IsNotFound(err)).To(BeTrue())
	})

	It("returns the saved record", func() {
		saved, err := d.Save(ctx, record(1, "first"))
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeTrue())

		got, err := d.Latest(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Seq).To(Equal(uint64(1)))
		Expect(got.ReceiptID).To(Equal("receipt-first"))
		Expect(got.SessionID).To(Equal("session"))
		Expect(got.EventID).To(HaveValue(Equal("id-first")))
		Expect(got.EventType).To(HaveValue(Equal("type-first")))
		Expect(got.Data).To(Equal("first"))
		Expect(got.ReceivedAt.Equal(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))).To(BeTrue())
	})

	It("keeps only the latest record", func() {
		_, err := d.Save(ctx, record(1, "first"))
		Expect(err).NotTo(HaveOccurred())
		_, err = d.Save(ctx, record(2, "second"))
		Expect(err).NotTo(HaveOccurred())

		got, err := d.Latest(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Data).To(Equal("second"))
	})

	It("ignores records that are not newer", func() {
		_, err := d.Save(ctx, record(5, "newer"))
		Expect(err).NotTo(HaveOccurred())

		saved, err := d.Save(ctx, record(3, "older"))
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeFalse())

		saved, err = d.Save(ctx, record(5, "same"))
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeFalse())

		got, err := d.Latest(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Data).To(Equal("newer"))
	})

	It("preserves absent id and event fields", func() {
		rec := snapshot.NewRecord(1, "r", "s", sse.Event{Data: "bare"}, time.Now())
		_, err := d.Save(ctx, rec)
		Expect(err).NotTo(HaveOccurred())

		got, err := d.Latest(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.EventID).To(BeNil())
		Expect(got.EventType).To(BeNil())
		Expect(got.Event()).To(Equal(sse.Event{Data: "bare"}))
	})

	It("rejects nil records", func() {
		_, err := d.Save(ctx, nil)
		Expect(err).To(MatchError(snapshot.ErrNilRecord))
	})

	It("converges on the highest sequence under concurrent saves", func() {
		var wg sync.WaitGroup
		for i := uint64(1); i <= 20; i++ {
			wg.Add(1)
			go func(seq uint64) {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := d.Save(ctx, record(seq, "concurrent"))
				Expect(err).NotTo(HaveOccurred())
			}(i)
		}
		wg.Wait()

		got, err := d.Latest(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Seq).To(Equal(uint64(20)))
	})
}
