// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/olegiv/charity-cms/internal/model"
)

// DefaultSeed returns the document written on first start.
func DefaultSeed() model.SiteContent {
	doc := model.SiteContent{
		Settings: model.SiteSettings{
			Mission:  "To empower the underprivileged through education, healthcare, and sustainable livelihood opportunities.",
			Vision:   "A society where every individual has the opportunity to live with dignity and hope.",
			HeroText: "Empowering Communities, Transforming Lives in Odisha.",
			Stats: model.ImpactStats{
				Beneficiaries: 12500,
				Villages:      45,
				Volunteers:    320,
				Meals:         50000,
			},
		},
		Programs: []model.Program{
			{
				ID:               "p1",
				Title:            "Education for All",
				Category:         model.CategoryEducation,
				ShortDescription: "Providing study materials and tuition to underprivileged children.",
				FullDescription:  "Our Education for All initiative focuses on bridging the gap for children in rural Salipur. We provide free textbooks, uniforms, and after-school tuition centers to ensure no child drops out due to financial constraints.",
				Beneficiaries:    "Children aged 5-15",
				Location:         "Salipur & surrounding villages",
				Image:            "https://picsum.photos/800/600?random=1",
				Active:           true,
			},
			{
				ID:               "p2",
				Title:            "Rural Health Camps",
				Category:         model.CategoryHealth,
				ShortDescription: "Free medical checkups and medicine distribution in remote areas.",
				FullDescription:  "We organize monthly health camps bringing doctors from Cuttack to remote villages. Services include general checkups, eye exams, and free distribution of essential medicines.",
				Beneficiaries:    "Elderly and Low-income families",
				Location:         "Cuttack District",
				Image:            "https://picsum.photos/800/600?random=2",
				Active:           true,
			},
			{
				ID:               "p3",
				Title:            "Women Empowerment",
				Category:         model.CategoryWomenEmpowerment,
				ShortDescription: "Skill development and self-help group formation for women.",
				FullDescription:  "Training women in stitching, handicraft, and food processing to help them achieve financial independence. We also assist in forming Self Help Groups (SHGs).",
				Beneficiaries:    "Rural Women",
				Location:         "Sapanpur",
				Image:            "https://picsum.photos/800/600?random=3",
				Active:           true,
			},
			{
				ID:               "p4",
				Title:            "Disaster Relief",
				Category:         model.CategoryDisasterRelief,
				ShortDescription: "Emergency food and shelter support during cyclones and floods.",
				FullDescription:  "Odisha is prone to natural calamities. We maintain a reserve of dry food, tarpaulins, and medicines to deploy immediately when disaster strikes.",
				Beneficiaries:    "Disaster Victims",
				Location:         "Coastal Odisha",
				Image:            "https://picsum.photos/800/600?random=4",
				Active:           true,
			},
		},
		Events: []model.Event{
			{
				ID:               "e1",
				Title:            "Annual Charity Gala",
				Date:             "2023-12-15",
				Location:         "Community Hall, Salipur",
				ShortDescription: "Celebrating our yearly achievements and fundraising.",
				FullDescription:  "A night of culture and giving. Join us as we celebrate the milestones achieved this year and pledge support for the next.",
				Image:            "https://picsum.photos/800/600?random=5",
			},
			{
				ID:               "e2",
				Title:            "Mega Health Camp",
				Date:             "2024-01-20",
				Location:         "St. Xavier School Grounds",
				ShortDescription: "Free eye and dental checkup for 500+ villagers.",
				FullDescription:  "Partnering with local hospitals to provide comprehensive care.",
				Image:            "https://picsum.photos/800/600?random=6",
			},
		},
		BlogPosts: []model.BlogPost{
			{
				ID:       "b1",
				Title:    "The Joy of Giving: Winter Drive 2023",
				Slug:     "winter-drive-2023",
				Date:     "2023-11-01",
				Author:   "Admin",
				Excerpt:  "How we distributed 500 blankets to the homeless in Cuttack.",
				Content:  "This winter, the Jati Welfare Foundation team took to the streets...",
				Image:    "https://picsum.photos/800/600?random=7",
				ImageAlt: "Volunteers distributing blankets to the homeless",
			},
			{
				ID:       "b2",
				Title:    "Educating the Future",
				Slug:     "educating-future",
				Date:     "2023-10-15",
				Author:   "Ramesh Das",
				Excerpt:  "Success stories from our evening tuition centers.",
				Content:  "Meet Priya, a bright student from Sapanpur who recently topped her class...",
				Image:    "https://picsum.photos/800/600?random=8",
				ImageAlt: "Students studying in a tuition center",
			},
		},
		Gallery: []model.GalleryItem{
			{ID: "g1", ImageURL: "https://picsum.photos/400/300?random=9", Caption: "Food Distribution", Category: "Relief"},
			{ID: "g2", ImageURL: "https://picsum.photos/400/300?random=10", Caption: "Classroom Session", Category: "Education"},
			{ID: "g3", ImageURL: "https://picsum.photos/400/300?random=11", Caption: "Medical Checkup", Category: "Health"},
		},
		Reports: []model.Report{
			{ID: "r1", Title: "Annual Report 2022-23", Year: "2023", Description: "Financials and Impact assessment.", FileURL: "#"},
			{ID: "r2", Title: "Audit Statement 2022", Year: "2022", Description: "Audited financial accounts.", FileURL: "#"},
		},
	}
	doc.Normalize()
	return doc
}

// LoadSeedFile reads a YAML seed document. Keys use the same names as the
// persisted JSON document.
func LoadSeedFile(path string) (model.SiteContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SiteContent{}, fmt.Errorf("reading seed file: %w", err)
	}
	var doc model.SiteContent
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.SiteContent{}, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return model.SiteContent{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return doc, nil
}
