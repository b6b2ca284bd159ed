package snapshot_test

import (
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/masque/pkg/snapshot"
	"github.com/papercomputeco/masque/pkg/sse"
)

var _ = Describe("Record", func() {
	It("round-trips an event", func() {
		id, typ := "1", "tick"
		ev := sse.NewEvent(&id, &typ, "a\nb")

		rec := snapshot.NewRecord(4, "receipt", "session", ev, time.Now())
		Expect(rec.Seq).To(Equal(uint64(4)))
		Expect(rec.Event()).To(Equal(ev))
		Expect(rec.ReceivedAt.Location()).To(Equal(time.UTC))
	})

	It("does not share pointers with the source event", func() {
		id := "1"
		ev := sse.NewEvent(&id, nil, "")
		rec := snapshot.NewRecord(1, "", "", ev, time.Now())

		*ev.ID = "2"
		Expect(rec.EventID).To(HaveValue(Equal("1")))
	})
})

var _ = Describe("NotFoundError", func() {
	It("is detected through wrapping", func() {
		err := fmt.Errorf("loading: %w", snapshot.NotFoundError{})
		Expect(snapshot.IsNotFound(err)).To(BeTrue())
		Expect(snapshot.IsNotFound(errors.New("other"))).To(BeFalse())
	})
})
