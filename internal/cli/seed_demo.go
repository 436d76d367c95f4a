package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/database"
	"github.com/masonr9/CSC400Project-sub000/internal/database/books"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// SeedDemoCommand loads a small demo catalog so a fresh install has
// something to browse before a librarian enters real stock.
type SeedDemoCommand struct {
	fs *flag.FlagSet

	dbPath string
	force  bool
}

func NewSeedDemoCommand() *SeedDemoCommand {
	cmd := &SeedDemoCommand{
		fs: flag.NewFlagSet("seed-demo", flag.ContinueOnError),
	}

	cmd.fs.StringVar(&cmd.dbPath, "db", config.DefaultDatabasePath, "Path to the SQLite database")
	cmd.fs.BoolVar(&cmd.force, "force", false, "Seed even if the catalog already has books")

	cmd.fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: seed-demo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Load a small demo catalog into the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.fs.PrintDefaults()
	}

	return cmd
}

func (cmd *SeedDemoCommand) ParseFlags(args []string) error {
	return cmd.fs.Parse(args)
}

func (cmd *SeedDemoCommand) Run() error {
	db, err := database.NewDatabase(cmd.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	repo := books.NewRepository(db.DB)

	total, _, err := repo.CountBooks()
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if total > 0 && !cmd.force {
		return fmt.Errorf("catalog already has %d book(s); pass -force to seed anyway", total)
	}

	seeded := 0
	for _, book := range demoCatalog() {
		if err := repo.CreateBook(&book); err != nil {
			return fmt.Errorf("create %q: %w", book.Title, err)
		}
		seeded++
	}

	fmt.Printf("Seeded %d demo books into %s\n", seeded, cmd.dbPath)
	return nil
}

func demoCatalog() []entities.Book {
	return []entities.Book{
		{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Genre: "Science Fiction", Language: "English", ISBN: "9780441478125", PublicationYear: 1969, Available: true},
		{Title: "Invisible Cities", Author: "Italo Calvino", Genre: "Fiction", Language: "English", ISBN: "9780156453806", PublicationYear: 1972, Available: true},
		{Title: "The Name of the Rose", Author: "Umberto Eco", Genre: "Mystery", Language: "English", ISBN: "9780151446476", PublicationYear: 1980, Available: true},
		{Title: "Braiding Sweetgrass", Author: "Robin Wall Kimmerer", Genre: "Nature", Language: "English", ISBN: "9781571313560", PublicationYear: 2013, Available: true},
		{Title: "The Remains of the Day", Author: "Kazuo Ishiguro", Genre: "Fiction", Language: "English", ISBN: "9780571258246", PublicationYear: 1989, Available: true},
		{Title: "Thinking, Fast and Slow", Author: "Daniel Kahneman", Genre: "Psychology", Language: "English", ISBN: "9780374275631", PublicationYear: 2011, Available: true},
		{Title: "Pachinko", Author: "Min Jin Lee", Genre: "Historical Fiction", Language: "English", ISBN: "9781455563920", PublicationYear: 2017, Available: true},
		{Title: "The Structure of Scientific Revolutions", Author: "Thomas S. Kuhn", Genre: "Philosophy", Language: "English", ISBN: "9780226458083", PublicationYear: 1962, Available: true},
		{Title: "Seveneves", Author: "Neal Stephenson", Genre: "Science Fiction", Language: "English", ISBN: "9780062190376", PublicationYear: 2015, Available: true},
		{Title: "A Pattern Language", Author: "Christopher Alexander", Genre: "Architecture", Language: "English", ISBN: "9780195019193", PublicationYear: 1977, Available: true},
		{Title: "The Periodic Table", Author: "Primo Levi", Genre: "Memoir", Language: "English", ISBN: "9780805210415", PublicationYear: 1975, Available: true},
		{Title: "Gödel, Escher, Bach", Author: "Douglas Hofstadter", Genre: "Mathematics", Language: "English", ISBN: "9780465026562", PublicationYear: 1979, Available: true},
	}
}
