/*
Copyright 2025 The sipstuff-k8s-operator authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package builder

import (
	"strconv"

	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
)

// callCommand invokes the call CLI inside the job image.
var callCommand = []string{"python3", "-m", "sipstuff.cli", "call"}

// argOption contributes the argument tokens for one request field. A field
// left at its documented default contributes nothing, keeping generated
// commands minimal and stable.
type argOption func(r *v1alpha1.CallRequest) []string

var argOptions = []argOption{
	messageOption,
	timeoutOption,
	preDelayOption,
	interDelayOption,
	postDelayOption,
	waitForSilenceOption,
	repeatOption,
	ttsModelOption,
	ttsSampleRateOption,
	ttsDataDirOption,
	sttModelOption,
	sttLanguageOption,
	sttDataDirOption,
	transcribeOption,
	verboseOption,
	recordOption,
}

// buildCallArgs assembles the full container command for one call.
func buildCallArgs(r *v1alpha1.CallRequest) []string {
	args := make([]string, 0, len(callCommand)+8)
	args = append(args, callCommand...)
	args = append(args, "--dest", r.Dest)
	for _, option := range argOptions {
		args = append(args, option(r)...)
	}
	return args
}

func messageOption(r *v1alpha1.CallRequest) []string {
	if r.HasText() {
		return []string{"--text", *r.Text}
	}
	if r.HasWav() {
		return []string{"--wav", *r.Wav}
	}
	return nil
}

func timeoutOption(r *v1alpha1.CallRequest) []string {
	if r.Timeout == nil || *r.Timeout == v1alpha1.DefaultTimeoutSeconds {
		return nil
	}
	return []string{"--timeout", strconv.Itoa(int(*r.Timeout))}
}

func preDelayOption(r *v1alpha1.CallRequest) []string {
	return delayArg("--pre-delay", r.PreDelay)
}

func interDelayOption(r *v1alpha1.CallRequest) []string {
	return delayArg("--inter-delay", r.InterDelay)
}

func postDelayOption(r *v1alpha1.CallRequest) []string {
	return delayArg("--post-delay", r.PostDelay)
}

func waitForSilenceOption(r *v1alpha1.CallRequest) []string {
	if r.WaitForSilence == nil {
		return nil
	}
	return []string{"--wait-for-silence", formatFloat(*r.WaitForSilence)}
}

func repeatOption(r *v1alpha1.CallRequest) []string {
	if r.Repeat == nil || *r.Repeat <= v1alpha1.DefaultRepeat {
		return nil
	}
	return []string{"--repeat", strconv.Itoa(int(*r.Repeat))}
}

func ttsModelOption(r *v1alpha1.CallRequest) []string {
	return stringArg("--tts-model", r.TTSModel)
}

func ttsSampleRateOption(r *v1alpha1.CallRequest) []string {
	if r.TTSSampleRate == nil {
		return nil
	}
	return []string{"--tts-sample-rate", strconv.Itoa(int(*r.TTSSampleRate))}
}

func ttsDataDirOption(r *v1alpha1.CallRequest) []string {
	return stringArg("--tts-data-dir", r.TTSDataDir)
}

func sttModelOption(r *v1alpha1.CallRequest) []string {
	return stringArg("--stt-model", r.STTModel)
}

func sttLanguageOption(r *v1alpha1.CallRequest) []string {
	return stringArg("--stt-language", r.STTLanguage)
}

func sttDataDirOption(r *v1alpha1.CallRequest) []string {
	return stringArg("--stt-data-dir", r.STTDataDir)
}

func transcribeOption(r *v1alpha1.CallRequest) []string {
	if !r.Transcribe {
		return nil
	}
	return []string{"--transcribe"}
}

func verboseOption(r *v1alpha1.CallRequest) []string {
	if !r.Verbose {
		return nil
	}
	return []string{"--verbose"}
}

func recordOption(r *v1alpha1.CallRequest) []string {
	if r.Record == nil {
		return nil
	}
	return []string{"--record", *r.Record}
}

func stringArg(flag string, value *string) []string {
	if value == nil || *value == "" {
		return nil
	}
	return []string{flag, *value}
}

func delayArg(flag string, seconds float64) []string {
	if seconds <= 0 {
		return nil
	}
	return []string{flag, formatFloat(seconds)}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
