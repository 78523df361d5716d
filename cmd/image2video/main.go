package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/image2video/internal/audio"
	"github.com/ivlev/image2video/internal/clip"
	"github.com/ivlev/image2video/internal/config"
	"github.com/ivlev/image2video/internal/engine"
	"github.com/ivlev/image2video/internal/project"
	"github.com/ivlev/image2video/internal/source"
	"github.com/ivlev/image2video/internal/system"
	"github.com/ivlev/image2video/internal/transition"
	"github.com/ivlev/image2video/internal/video"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/images", "input/pdf", "input/audio", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	projectPtr := flag.String("project", "", "Путь к YAML-проекту (клипы, анимации, переходы)")
	inputPtr := flag.String("input", "", "Путь к изображению, папке с изображениями или PDF (по умолчанию: самый свежий файл в input/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	durationPtr := flag.Float64("duration", 0, "Длительность показа одного клипа в секундах")
	widthPtr := flag.Int("width", cfg.Width, "Ширина")
	heightPtr := flag.Int("height", cfg.Height, "Высота")
	fpsPtr := flag.Int("fps", cfg.FPS, "FPS")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	animationPtr := flag.String("animation", "auto", "Анимация клипов: имя пресета, random, auto, smart или none")
	transitionPtr := flag.String("transition", cfg.Transition, "Переход между клипами: crossfade, slide-left, slide-right, slide-top, slide-bottom, zoom-fade, rotate-fade, blinds, warp-dissolve, flash, random, none")
	fadePtr := flag.Float64("fade", cfg.FadeDuration, "Длительность перехода (сек)")
	qualityPtr := flag.String("quality", cfg.Quality, "Качество видео: low, medium, high")
	dpiPtr := flag.Int("dpi", cfg.DPI, "DPI растеризации PDF")
	workersPtr := flag.Int("workers", cfg.Workers, "Потоки рендера (0 - авто)")
	seedPtr := flag.Int64("seed", 0, "Зерно генератора случайностей (0 - от времени)")
	audioPtr := flag.String("audio", "", "Фоновая аудиодорожка на всё видео (по умолчанию: самый свежий файл в input/audio/)")
	qrPtr := flag.String("qr-link", "", "Ссылка для QR-кода на финальном кадре")
	previewPtr := flag.Bool("preview", false, "Отрендерить только первый клип")
	statsPtr := flag.Bool("stats", false, "Показать отчёт о производительности")

	flag.Parse()

	cfg.Width, cfg.Height = *widthPtr, *heightPtr
	switch *presetPtr {
	case "16:9":
		cfg.Width, cfg.Height = 1280, 720
	case "9:16":
		cfg.Width, cfg.Height = 720, 1280
	case "4:5":
		cfg.Width, cfg.Height = 1080, 1350
	}
	cfg.FPS = *fpsPtr
	cfg.Transition = *transitionPtr
	cfg.FadeDuration = *fadePtr
	cfg.Quality = *qualityPtr
	cfg.DPI = *dpiPtr
	cfg.Workers = *workersPtr
	cfg.Seed = *seedPtr
	cfg.ShowStats = *statsPtr
	if *durationPtr > 0 {
		cfg.DefaultDuration = *durationPtr
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	var clips []engine.ClipSpec
	global := engine.TransitionSpec{Kind: transition.Parse(cfg.Transition), Duration: cfg.FadeDuration}
	var perBoundary []engine.TransitionSpec

	if *projectPtr != "" {
		proj, err := project.Load(*projectPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка проекта: %v", err)
		}
		proj.Apply(cfg)
		clips = proj.ClipSpecs()
		global, perBoundary = proj.Transitions(cfg)
		fmt.Printf("[*] Проект: %s (%d клипов)\n", *projectPtr, len(clips))
	} else {
		inputPath := *inputPtr
		if inputPath == "" {
			inputPath = findDefaultInput()
			fmt.Printf("[*] Выбран файл: %s\n", inputPath)
		}
		clips, err = collectClips(inputPath, cfg, *animationPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка инициализации источника: %v", err)
		}
	}

	if len(clips) == 0 {
		log.Fatalf("[-] Ошибка: в источнике нет изображений")
	}

	if *qrPtr != "" {
		card, err := source.QRCard(*qrPtr, 0)
		if err != nil {
			log.Fatalf("[-] Ошибка генерации QR-кода: %v", err)
		}
		clips = append(clips, engine.ClipSpec{Image: card, DurationHint: cfg.DefaultDuration})
		fmt.Printf("[*] Добавлен финальный кадр с QR-кодом: %s\n", *qrPtr)
	}

	// Обработка фонового аудио
	soundtrack := *audioPtr
	if soundtrack == "" && *projectPtr == "" {
		if latest, err := system.FindLatest("input/audio", []string{".mp3", ".wav", ".m4a", ".aac"}); err == nil {
			soundtrack = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", soundtrack)
		}
	}

	prober := &audio.FFprobe{}
	if soundtrack != "" && *durationPtr == 0 {
		// Распределяем длительность дорожки поровну между клипами
		if dur, err := prober.Duration(context.Background(), soundtrack); err == nil {
			perClip := dur / float64(len(clips))
			for i := range clips {
				if clips[i].DurationHint == 0 && clips[i].AudioPath == "" {
					clips[i].DurationHint = perClip
				}
			}
			fmt.Printf("[*] Длительность видео установлена по аудио: %.2fs\n", dur)
		} else {
			log.Printf("[!] Не удалось получить длительность аудио: %v", err)
		}
	}

	encoderName := cfg.VideoEncoder
	if encoderName == "" {
		encoderName = video.BestH264Encoder("")
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
		cfg.VideoEncoder = encoderName
	}

	outputPath := *outputPtr
	if outputPath == "" {
		name := "video"
		if *projectPtr != "" {
			name = baseName(*projectPtr)
		} else if *inputPtr != "" {
			name = baseName(*inputPtr)
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outputPath = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.mp4", name, timestamp))
	}

	proj := engine.NewProject(cfg, &video.FFmpegEncoder{}, prober)
	proj.Cache = clip.NewCache()
	defer proj.Cache.Clear()
	proj.Soundtrack = soundtrack

	ctx := context.Background()
	if *previewPtr {
		if err := proj.Preview(ctx, clips[0], outputPath); err != nil {
			log.Fatalf("[-] Ошибка предпросмотра: %v", err)
		}
	} else {
		if err := proj.Render(ctx, clips, global, perBoundary, outputPath); err != nil {
			log.Fatalf("[-] Ошибка рендера: %v", err)
		}
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", outputPath)
}

// collectClips expands the input path into clip specs: a PDF becomes one
// clip per page, a directory one clip per image, a file a single clip.
func collectClips(inputPath string, cfg *config.Config, anim string) ([]engine.ClipSpec, error) {
	if strings.HasSuffix(strings.ToLower(inputPath), ".pdf") {
		pages, err := source.RasterizePDF(inputPath, cfg.DPI)
		if err != nil {
			return nil, err
		}
		clips := make([]engine.ClipSpec, 0, len(pages))
		for _, page := range pages {
			clips = append(clips, clipForImage(page, anim))
		}
		fmt.Printf("[*] PDF растеризован: %d страниц @ %d DPI\n", len(pages), cfg.DPI)
		return clips, nil
	}

	paths, err := source.ListImages(inputPath)
	if err != nil {
		return nil, err
	}
	clips := make([]engine.ClipSpec, 0, len(paths))
	for _, p := range paths {
		clips = append(clips, engine.ClipSpec{ImagePath: p, Animation: anim})
	}
	return clips, nil
}

func clipForImage(img image.Image, anim string) engine.ClipSpec {
	return engine.ClipSpec{Image: img, Animation: anim}
}

// findDefaultInput mimics the no-arguments workflow: take the freshest PDF,
// otherwise the images directory.
func findDefaultInput() string {
	if latest, err := system.FindLatest("input/pdf", []string{".pdf"}); err == nil {
		return latest
	}
	return "input/images"
}

func baseName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(name, " ", "_")
}
