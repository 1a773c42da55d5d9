// seed_candidates.go registers candidates from a directory of profile photos.
// Files are named <gender>_<id>.<ext>; male ids get a trailing 0 so they do
// not collide with female ids.
//
// Usage:
//
//	go run scripts/seed_candidates.go -dir ./people -api http://localhost:8600 -token $HOTLIKEME_ADMIN_TOKEN -pics https://cdn.example.com/people
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type candidate struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
}

var maleNames = []string{
	"Sebastian Stephan", "Michael Wirth", "Fabian Brun", "Robert Erdin", "Raphael Stanger",
	"Fabio Schmid", "Roman Ahrendt", "Pascal Heid", "David Sacher", "Nikolaus Strassmann",
	"Alessandro Buechel", "Detlef Degen", "Justin Hinrichs", "Roman Feilhaber", "Tilman Kornhaus",
}

var femaleNames = []string{
	"Rachel Gaertner", "Sabine Rademacher", "Leandra Cossmann", "Corinne Rathenau", "Nadine Gasser",
	"Sophie Friedemann", "Yvonne Frosch", "Marlen Feulner", "Isabell Kuttner", "Michele Aach",
	"Tanja Steitz", "Juliane Scherrer", "Tamara Felgenhauer", "Patricia Storl",
}

func main() {
	dir := flag.String("dir", ".", "directory of <gender>_<id>.<ext> photos")
	apiURL := flag.String("api", "http://localhost:8600", "hotlikeme API base URL")
	token := flag.String("token", "", "admin bearer token")
	picsURL := flag.String("pics", "", "base URL the photos are served from")
	dryRun := flag.Bool("dry-run", false, "print candidates without posting")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read dir: %v", err)
	}

	rand.Shuffle(len(maleNames), func(i, j int) { maleNames[i], maleNames[j] = maleNames[j], maleNames[i] })
	rand.Shuffle(len(femaleNames), func(i, j int) { femaleNames[i], femaleNames[j] = femaleNames[j], femaleNames[i] })

	var candidates []candidate
	var m, f int
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".go") {
			continue
		}
		c, err := parsePhoto(e.Name())
		if err != nil {
			log.Printf("skip %s: %v", e.Name(), err)
			continue
		}
		switch c.Gender {
		case "male":
			if m >= len(maleNames) {
				log.Printf("skip %s: out of male names", e.Name())
				continue
			}
			c.Name = maleNames[m]
			m++
		case "female":
			if f >= len(femaleNames) {
				log.Printf("skip %s: out of female names", e.Name())
				continue
			}
			c.Name = femaleNames[f]
			f++
		}
		if *picsURL != "" {
			c.ProfilePic = strings.TrimRight(*picsURL, "/") + "/" + e.Name()
		}
		c.Age = 19 + rand.IntN(16)
		candidates = append(candidates, c)
	}

	log.Printf("parsed %d candidates from %s", len(candidates), *dir)

	if *dryRun {
		for _, c := range candidates {
			fmt.Printf("%d %s (%s, %d) %s\n", c.ID, c.Name, c.Gender, c.Age, c.ProfilePic)
		}
		return
	}

	client := &http.Client{}
	created, skipped := 0, 0
	for _, c := range candidates {
		body, _ := json.Marshal(c)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/candidates", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %d: %v", c.ID, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %d: %v", c.ID, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			created++
		} else {
			log.Printf("skip %d: status %d", c.ID, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}

func parsePhoto(name string) (candidate, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	gender, rawID, ok := strings.Cut(base, "_")
	if !ok {
		return candidate{}, fmt.Errorf("expected <gender>_<id>")
	}
	if gender != "male" && gender != "female" {
		return candidate{}, fmt.Errorf("unknown gender %q", gender)
	}
	if gender == "male" {
		rawID += "0"
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return candidate{}, fmt.Errorf("invalid id %q", rawID)
	}
	return candidate{ID: id, Gender: gender}, nil
}
