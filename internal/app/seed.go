package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"labor-quiz-service/internal/domain"
)

// SeedQuestions stores the default question bank when the repository is empty.
// It returns the number of questions added.
func SeedQuestions(ctx context.Context, repo QuestionRepository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list questions: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	defaults := DefaultQuestions()
	for _, in := range defaults {
		if _, err := repo.Add(ctx, in); err != nil {
			return 0, fmt.Errorf("seed question: %w", err)
		}
	}
	log.Info().Int("count", len(defaults)).Msg("seeded default questions")
	return len(defaults), nil
}

// DefaultQuestions is the built-in labor-market question bank (Indonesian).
func DefaultQuestions() []domain.QuestionInput {
	return []domain.QuestionInput{
		{
			Prompt: "Apa yang dimaksud dengan angkatan kerja?",
			Options: []string{
				"Seluruh penduduk dalam suatu negara",
				"Penduduk usia kerja yang bekerja dan sedang mencari pekerjaan",
				"Penduduk yang sudah pensiun",
				"Penduduk yang masih bersekolah",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt:        "Batas usia minimal seseorang untuk masuk angkatan kerja di Indonesia adalah...",
			Options:       []string{"13 tahun", "15 tahun", "17 tahun", "21 tahun"},
			CorrectAnswer: 1,
		},
		{
			Prompt: "Apa yang dimaksud dengan pengangguran friksional?",
			Options: []string{
				"Pengangguran karena tidak ada lowongan pekerjaan",
				"Pengangguran karena perubahan teknologi",
				"Pengangguran sementara karena sedang mencari pekerjaan yang lebih baik",
				"Pengangguran karena tidak mau bekerja",
			},
			CorrectAnswer: 2,
		},
		{
			Prompt:        "Upah Minimum Regional (UMR) ditetapkan oleh...",
			Options:       []string{"Presiden", "Menteri Tenaga Kerja", "Gubernur/Bupati/Walikota", "DPR"},
			CorrectAnswer: 2,
		},
		{
			Prompt: "Hak pekerja yang dijamin oleh undang-undang adalah...",
			Options: []string{
				"Bekerja 12 jam sehari tanpa istirahat",
				"Mendapat upah yang layak dan cuti",
				"Tidak boleh membentuk serikat pekerja",
				"Tidak mendapat jaminan kesehatan",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt: "Apa yang dimaksud dengan tenaga kerja terampil?",
			Options: []string{
				"Tenaga kerja yang tidak memerlukan pendidikan",
				"Tenaga kerja yang memiliki keahlian khusus melalui pendidikan atau pelatihan",
				"Tenaga kerja yang baru lulus sekolah",
				"Tenaga kerja yang bekerja di pemerintahan",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt: "BPJS Ketenagakerjaan memberikan perlindungan dalam hal...",
			Options: []string{
				"Hanya kecelakaan kerja",
				"Kecelakaan kerja, jaminan hari tua, pensiun, dan kematian",
				"Hanya jaminan pensiun",
				"Hanya asuransi jiwa",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt: "Pengangguran struktural disebabkan oleh...",
			Options: []string{
				"Pergantian musim",
				"Perubahan struktur ekonomi dan ketidakcocokan keterampilan",
				"Keinginan pribadi untuk tidak bekerja",
				"Liburan panjang",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt: "Kewajiban pekerja yang benar adalah...",
			Options: []string{
				"Datang kerja sesuka hati",
				"Menaati peraturan perusahaan dan melaksanakan tugas dengan baik",
				"Tidak perlu menjaga kerahasiaan perusahaan",
				"Menolak perintah atasan",
			},
			CorrectAnswer: 1,
		},
		{
			Prompt: "Tingkat Partisipasi Angkatan Kerja (TPAK) dihitung dengan rumus...",
			Options: []string{
				"Jumlah pengangguran dibagi jumlah penduduk",
				"Jumlah angkatan kerja dibagi penduduk usia kerja dikali 100%",
				"Jumlah pekerja dibagi jumlah pengangguran",
				"Jumlah penduduk dibagi angkatan kerja",
			},
			CorrectAnswer: 1,
		},
	}
}
