// Package pubmed resolves PMIDs through the NCBI E-utilities EFetch endpoint.
package pubmed

import (
	"encoding/xml"
)

// PubmedArticleSet is the XML document returned by efetch.
type PubmedArticleSet struct {
	XMLName       xml.Name        `xml:"PubmedArticleSet"`
	PubmedArticle []PubmedArticle `xml:"PubmedArticle"`
}

// PubmedArticle is one article of the answer.
type PubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title   string `xml:"ArticleTitle"`
			Authors []struct {
				LastName       string `xml:"LastName"`
				Initials       string `xml:"Initials"`
				CollectiveName string `xml:"CollectiveName"`
			} `xml:"AuthorList>Author"`
			Journal struct {
				PubDate struct {
					Year        string `xml:"Year"`
					MedlineDate string `xml:"MedlineDate"`
				} `xml:"JournalIssue>PubDate"`
			} `xml:"Journal"`
			ELocationID []struct {
				IDType  string `xml:"EIdType,attr"`
				ValidYN string `xml:"ValidYN,attr"`
				Value   string `xml:",chardata"`
			} `xml:"ELocationID"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}
