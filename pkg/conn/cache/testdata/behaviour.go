package testdata

import (
	"context"
	"time"

	Ψ "github.com/bsm/ginkgo/v2"
	Ω "github.com/bsm/gomega"
	"github.com/kvlite/kvlite/pkg/conn/cache"
)

type testableBackend interface {
	NumEntries() (int64, error)
	ForceExpire(name string, at time.Time) error
}

// LikeBackend test link.
type LikeBackend struct {
	cache.Backend
}

// BehavesLikeBackend contains common Backend behaviour.
func BehavesLikeBackend(link *LikeBackend) {
	var subject cache.Backend
	var ctx = context.Background()

	numEntries := func() int64 {
		cnt, err := link.Backend.(testableBackend).NumEntries()
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		return cnt
	}

	forceExpire := func(name string, at time.Time) {
		Ω.Expect(link.Backend.(testableBackend).ForceExpire(name, at)).To(Ω.Succeed())
	}

	names := func(entries []*cache.Entry) []string {
		res := make([]string, 0, len(entries))
		for _, e := range entries {
			res = append(res, e.Name)
		}
		return res
	}

	Ψ.BeforeEach(func() {
		subject = link.Backend
	})

	Ψ.AfterEach(func() {
		Ω.Expect(subject.Flush(ctx)).To(Ω.Succeed())
	})

	Ψ.It("connects", func() {
		Ω.Expect(subject).NotTo(Ω.BeNil())
	})

	Ψ.It("pings", func() {
		Ω.Expect(subject.Ping(ctx)).To(Ω.Succeed())
	})

	Ψ.It("puts/gets", func() {
		Ω.Expect(subject.Put(ctx, "key", "val", 0)).To(Ω.Succeed())

		entry, err := subject.Get(ctx, "key")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry.ID).To(Ω.BeNumerically(">", 0))
		Ω.Expect(entry.Name).To(Ω.Equal("key"))
		Ω.Expect(entry.Value).To(Ω.Equal("val"))
		Ω.Expect(entry.CreatedAt).NotTo(Ω.BeZero())
		Ω.Expect(entry.ExpiresAt).To(Ω.BeNil())
	})

	Ψ.It("returns nil when getting unknown names", func() {
		entry, err := subject.Get(ctx, "unknown")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry).To(Ω.BeNil())
	})

	Ψ.It("allows blank values", func() {
		Ω.Expect(subject.Put(ctx, "key", "", 0)).To(Ω.Succeed())

		entry, err := subject.Get(ctx, "key")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry.Value).To(Ω.Equal(""))
	})

	Ψ.It("rejects blank names", func() {
		Ω.Expect(subject.Put(ctx, "", "val", 0)).To(Ω.MatchError("name is invalid"))

		_, err := subject.Get(ctx, "")
		Ω.Expect(err).To(Ω.MatchError("name is invalid"))

		Ω.Expect(subject.Del(ctx, "")).To(Ω.MatchError("name is invalid"))
	})

	Ψ.It("keeps a single entry per name", func() {
		Ω.Expect(subject.Put(ctx, "key", "v1", 0)).To(Ω.Succeed())

		first, err := subject.Get(ctx, "key")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())

		Ω.Expect(subject.Put(ctx, "key", "v2", 60)).To(Ω.Succeed())
		Ω.Expect(subject.Put(ctx, "key", "v3", 0)).To(Ω.Succeed())
		Ω.Expect(numEntries()).To(Ω.BeNumerically("==", 1))

		entry, err := subject.Get(ctx, "key")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry.ID).To(Ω.Equal(first.ID))
		Ω.Expect(entry.Value).To(Ω.Equal("v3"))
	})

	Ψ.It("sets expiry on writes with a TTL", func() {
		Ω.Expect(subject.Put(ctx, "key", "val", 60)).To(Ω.Succeed())

		entry, err := subject.Get(ctx, "key")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry.ExpiresAt).NotTo(Ω.BeNil())
		Ω.Expect(*entry.ExpiresAt).To(Ω.BeTemporally(">", time.Now()))
	})

	Ψ.It("clears expiry on writes without a TTL", func() {
		Ω.Expect(subject.Put(ctx, "key", "v1", 60)).To(Ω.Succeed())
		Ω.Expect(subject.Put(ctx, "key", "v2", 0)).To(Ω.Succeed())

		entry, err := subject.Get(ctx, "key")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry.ExpiresAt).To(Ω.BeNil())
	})

	Ψ.It("returns expired entries until they are swept", func() {
		Ω.Expect(subject.Put(ctx, "key", "val", 30)).To(Ω.Succeed())
		forceExpire("key", time.Now().Add(-time.Hour))

		entry, err := subject.Get(ctx, "key")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry).NotTo(Ω.BeNil())
		Ω.Expect(entry.Expired(time.Now())).To(Ω.BeTrue())
	})

	Ψ.It("lists all entries", func() {
		Ω.Expect(subject.Put(ctx, "one", "v1", 0)).To(Ω.Succeed())
		Ω.Expect(subject.Put(ctx, "two", "v2", 30)).To(Ω.Succeed())
		forceExpire("two", time.Now().Add(-time.Hour))

		all, err := subject.GetAll(ctx)
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(names(all)).To(Ω.ConsistOf("one", "two"))
	})

	Ψ.It("counts entries", func() {
		Ω.Expect(subject.Count(ctx)).To(Ω.BeNumerically("==", 0))

		Ω.Expect(subject.Put(ctx, "one", "v1", 0)).To(Ω.Succeed())
		Ω.Expect(subject.Put(ctx, "two", "v2", 30)).To(Ω.Succeed())
		forceExpire("two", time.Now().Add(-time.Hour))

		Ω.Expect(subject.Count(ctx)).To(Ω.BeNumerically("==", 2))
	})

	Ψ.It("sweeps only truly expired entries", func() {
		Ω.Expect(subject.Put(ctx, "past", "v1", 30)).To(Ω.Succeed())
		Ω.Expect(subject.Put(ctx, "future", "v2", 30)).To(Ω.Succeed())
		Ω.Expect(subject.Put(ctx, "never", "v3", 0)).To(Ω.Succeed())
		forceExpire("past", time.Now().Add(-time.Hour))

		expired, err := subject.GetExpired(ctx)
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(names(expired)).To(Ω.ConsistOf("past"))

		Ω.Expect(subject.Sweep(ctx)).To(Ω.Succeed())

		all, err := subject.GetAll(ctx)
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(names(all)).To(Ω.ConsistOf("future", "never"))

		entry, err := subject.Get(ctx, "past")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry).To(Ω.BeNil())
	})

	Ψ.It("sweeps with nothing expired", func() {
		Ω.Expect(subject.Put(ctx, "key", "val", 0)).To(Ω.Succeed())
		Ω.Expect(subject.Sweep(ctx)).To(Ω.Succeed())
		Ω.Expect(numEntries()).To(Ω.BeNumerically("==", 1))
	})

	Ψ.It("deletes", func() {
		Ω.Expect(subject.Put(ctx, "key", "val", 0)).To(Ω.Succeed())
		Ω.Expect(subject.Del(ctx, "key")).To(Ω.Succeed())

		entry, err := subject.Get(ctx, "key")
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(entry).To(Ω.BeNil())
	})

	Ψ.It("ignores deletes of unknown names", func() {
		Ω.Expect(subject.Put(ctx, "key", "val", 0)).To(Ω.Succeed())
		Ω.Expect(subject.Del(ctx, "missing-key")).To(Ω.Succeed())
		Ω.Expect(subject.Count(ctx)).To(Ω.BeNumerically("==", 1))
	})

	Ψ.It("stores hostile names as plain data", func() {
		name := `a'); DROP TABLE cachetable;--`
		Ω.Expect(subject.Put(ctx, name, "val", 0)).To(Ω.Succeed())
		Ω.Expect(subject.Put(ctx, "other", "val", 0)).To(Ω.Succeed())

		all, err := subject.GetAll(ctx)
		Ω.Expect(err).NotTo(Ω.HaveOccurred())
		Ω.Expect(names(all)).To(Ω.ConsistOf(name, "other"))
	})

	Ψ.It("flushes", func() {
		Ω.Expect(subject.Put(ctx, "key", "val", 0)).To(Ω.Succeed())
		Ω.Expect(numEntries()).To(Ω.BeNumerically("==", 1))
		Ω.Expect(subject.Flush(ctx)).To(Ω.Succeed())
		Ω.Expect(numEntries()).To(Ω.BeNumerically("==", 0))
	})
}
