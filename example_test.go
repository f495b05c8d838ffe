package tablesession_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/tablesession"
	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/aretw0/tablesession/pkg/session"
)

// ExampleNewMemoryStore shows the read/write/destroy cycle of a session.
func ExampleNewMemoryStore() {
	ctx := context.Background()

	store, err := tablesession.NewMemoryStore(domain.DefaultTable,
		session.WithClock(ports.FixedClock(100)),
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := store.Write(ctx, "abc", "user|s:5:\"alice\";"); err != nil {
		log.Fatal(err)
	}

	data, err := store.Read(ctx, "abc")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(data)

	if err := store.Destroy(ctx, "abc"); err != nil {
		log.Fatal(err)
	}
	data, _ = store.Read(ctx, "abc")
	fmt.Printf("%q\n", data)

	// Output:
	// user|s:5:"alice";
	// ""
}
