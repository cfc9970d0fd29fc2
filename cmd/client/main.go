package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const serverPort = 8080

type ViewRow struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Dob     string `json:"dob"`
	Country string `json:"country"`
	City    string `json:"city"`
}

const bobDraft = `{
	"name": "Bob Smith",
	"year": 1990,
	"month": 5,
	"day": 14,
	"country": {"value": "Canada", "label": "Canada"},
	"city": {"value": "Ottawa", "label": "Ottawa"}
}`

// Walks one add/edit/delete cycle against a running service.
//
// Usage example on the command line:
// > go run main.go
func main() {
	fmt.Println("opening the add form")
	sendRequest(http.MethodPost, "/form/add", "")
	sendRequest(http.MethodPost, "/form/country", `{"country": {"value": "Canada", "label": "Canada"}}`)

	fmt.Println("submitting Bob Smith")
	rows := decodeRows(sendRequest(http.MethodPost, "/form/submit", bobDraft))
	id := findBob(rows)
	fmt.Printf("created %s, table now has %d rows\n", id, len(rows))

	fmt.Println("editing Bob Smith to live in Toronto")
	sendRequest(http.MethodPost, "/form/edit/"+id, "")
	edited := strings.Replace(bobDraft, "Ottawa", "Toronto", 2)
	rows = decodeRows(sendRequest(http.MethodPost, "/form/submit", edited))
	for _, row := range rows {
		if row.Id == id {
			fmt.Printf("now living in %s\n", row.City)
		}
	}

	fmt.Println("deleting Bob Smith")
	rows = decodeRows(sendRequest(http.MethodDelete, "/users/"+id, ""))
	fmt.Printf("table now has %d rows\n", len(rows))
}

func findBob(rows []ViewRow) string {
	for _, row := range rows {
		if row.Name == "Bob Smith" {
			return row.Id
		}
	}
	panic("Bob Smith not found in the table")
}

func decodeRows(body []byte) []ViewRow {
	var rows []ViewRow
	if err := json.Unmarshal(body, &rows); err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return rows
}

func sendRequest(method string, path string, body string) []byte {
	requestURL := fmt.Sprintf("http://localhost:%d%s", serverPort, path)
	req, err := http.NewRequest(method, requestURL, strings.NewReader(body))
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		panic(fmt.Sprintf("%s %s answered %d: %s", method, path, res.StatusCode, resBody))
	}
	return resBody
}
