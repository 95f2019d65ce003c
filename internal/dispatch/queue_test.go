package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matryer/is"
)

func TestQueue_PreservesSubmissionOrder(t *testing.T) {
	is := is.New(t)

	q := New(Config{}, nil)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		q.Submit(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Close()

	is.Equal(len(got), 100)
	for i, v := range got {
		is.Equal(v, i) // tasks run in submission order
	}
}

func TestQueue_NeverRunsTasksConcurrently(t *testing.T) {
	is := is.New(t)

	q := New(Config{Buffer: 8}, nil)

	var running, overlaps int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q.Submit(func() {
					if atomic.AddInt32(&running, 1) > 1 {
						atomic.AddInt32(&overlaps, 1)
					}
					atomic.AddInt32(&running, -1)
				})
			}
		}()
	}
	wg.Wait()
	q.Close()

	is.Equal(atomic.LoadInt32(&overlaps), int32(0)) // no two tasks overlap
}

func TestQueue_CallWaitsForCompletion(t *testing.T) {
	is := is.New(t)

	q := New(Config{}, nil)
	defer q.Close()

	value := 0
	q.Call(func() { value = 42 })

	is.Equal(value, 42) // Call returns only after the task ran
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q := New(Config{}, nil)
	q.Submit(func() {})
	q.Close()
	q.Close() // second Close must not panic or hang
}
