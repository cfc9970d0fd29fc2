package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"gitlab.com/william.mucha/users-service/internal/store"
)

// Usage example on the command line:
// > DBHOST=localhost DBUSER=will DBPWD=secret go run main.go -file=../../scripts/database.sql
func main() {
	sqlDB, err := store.CreateDatabase()
	if err != nil {
		log.Fatal(err)
	}
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	flag.Parse()

	readFile, err := os.Open(*filePtr)
	if err != nil {
		log.Fatal(err)
	}
	defer readFile.Close()

	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for fileScanner.Scan() {
		line := fileScanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			db.MustExec(builder.String())
			builder = strings.Builder{}
		}
	}
}
